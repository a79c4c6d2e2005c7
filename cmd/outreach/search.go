// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/outreach/internal/export"
	"github.com/pdiddy/outreach/internal/outreach"
	"github.com/pdiddy/outreach/internal/search"
	"github.com/pdiddy/outreach/internal/session"
	"github.com/pdiddy/outreach/internal/store"
	"github.com/pdiddy/outreach/pkg/types"
)

// draftConcurrency bounds parallel draft requests.
const draftConcurrency = 3

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find prospects matching a role, niche and location",
	Long: `Search runs a web-grounded Gemini search for prospects matching the
given criteria, extracts structured candidates from the answer, and prints
them with their grounding sources. Empty criteria fall back to the
configured defaults.

With --save-all the candidates become leads; --draft also writes a cold
email for each lead; --export writes the leads as CSV, YAML or JSON.
Use --output to keep the raw result and --from to replay it later without
calling the search again.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("role", "", "target role or business type (e.g. \"Marketing Agencies\")")
	searchCmd.Flags().String("niche", "", "target niche (e.g. \"Real Estate\")")
	searchCmd.Flags().String("location", "", "target location (e.g. \"New York\")")
	searchCmd.Flags().Bool("save-all", false, "save every candidate as a lead")
	searchCmd.Flags().Bool("draft", false, "draft a cold email for every saved lead (implies --save-all)")
	searchCmd.Flags().String("sender", "", "sender name used in drafts (overrides profile.name)")
	searchCmd.Flags().String("business", "", "sender business used in drafts (overrides profile.business)")
	searchCmd.Flags().String("offer", "", "offer pitched in drafts (overrides profile.offer)")
	searchCmd.Flags().String("export", "", "write leads to this file, a directory, or - for stdout")
	searchCmd.Flags().String("format", "csv", "export format: csv, yaml or json")
	searchCmd.Flags().String("output", "", "write the search result to this YAML file")
	searchCmd.Flags().String("from", "", "load a saved search result instead of searching")
	searchCmd.Flags().Bool("json", false, "print candidates as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	from, _ := cmd.Flags().GetString("from")
	doDraft, _ := cmd.Flags().GetBool("draft")
	saveAll, _ := cmd.Flags().GetBool("save-all")
	saveAll = saveAll || doDraft

	p, err := newPipeline(ctx, cfg, from == "" || doDraft)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := applyProfileFlags(cmd, p); err != nil {
		return err
	}

	st, err := runOrLoad(ctx, cmd, p, from)
	if err != nil {
		return err
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		res := types.SearchResult{RawText: st.RawText, Sources: st.Sources}
		if err := search.WriteResultFile(output, st.Criteria, res, st.Candidates); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote search result to %s\n", output)
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		if err := search.FormatJSON(st.Candidates, os.Stdout); err != nil {
			return err
		}
	} else {
		search.FormatTable(st.Candidates, os.Stdout)
		search.FormatSources(st.Sources, os.Stdout)
	}

	if saveAll {
		sum, err := p.SaveAll(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d lead(s), skipped %d, failed %d\n", len(sum.Saved), sum.Skipped, sum.Failed)
	}

	if doDraft {
		if err := draftAll(ctx, p); err != nil {
			return err
		}
	}

	if path, _ := cmd.Flags().GetString("export"); path != "" {
		name, _ := cmd.Flags().GetString("format")
		f, err := export.ParseFormat(name)
		if err != nil {
			return err
		}
		return exportLeads(ctx, p, path, f)
	}
	return nil
}

func runOrLoad(ctx context.Context, cmd *cobra.Command, p *outreach.Pipeline, from string) (session.State, error) {
	if from != "" {
		rf, err := search.ReadResultFile(from)
		if err != nil {
			return session.State{}, err
		}
		st, err := p.Load(rf.Criteria, rf.SearchResult(), rf.Candidates)
		if err != nil {
			return session.State{}, err
		}
		logger.Info("loaded search result", zap.String("path", from), zap.Int("candidates", len(st.Candidates)))
		return st, nil
	}

	role, _ := cmd.Flags().GetString("role")
	niche, _ := cmd.Flags().GetString("niche")
	location, _ := cmd.Flags().GetString("location")

	start := time.Now()
	st, err := p.Search(ctx, types.Criteria{Role: role, Niche: niche, Location: location})
	if err != nil {
		return session.State{}, err
	}
	logger.Info("search complete",
		zap.String("role", st.Criteria.Role),
		zap.String("niche", st.Criteria.Niche),
		zap.String("location", st.Criteria.Location),
		zap.Int("candidates", len(st.Candidates)),
		zap.Int("sources", len(st.Sources)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return st, nil
}

func applyProfileFlags(cmd *cobra.Command, p *outreach.Pipeline) error {
	prof := p.Profile()
	changed := false
	for flag, field := range map[string]*string{
		"sender":   &prof.Name,
		"business": &prof.Business,
		"offer":    &prof.Offer,
	} {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			*field = v
			changed = true
		}
	}
	if !changed {
		return nil
	}
	_, err := p.SetProfile(prof)
	return err
}

// draftAll drafts every saved lead. Individual drafting failures store the
// fallback draft and are reported, not returned.
func draftAll(ctx context.Context, p *outreach.Pipeline) error {
	leads, err := p.Leads(ctx, store.Filter{})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(draftConcurrency)
	for _, l := range leads {
		g.Go(func() error {
			out, err := p.GenerateDraft(gctx, l.ID)
			if err != nil {
				return err
			}
			if out.Fallback {
				fmt.Fprintf(os.Stderr, "  %s: draft failed (%s), stored placeholder\n", l.Name, out.Reason)
				return nil
			}
			fmt.Fprintf(os.Stderr, "  %s: %s\n", l.Name, out.Lead.EmailSubject)
			return nil
		})
	}
	return g.Wait()
}

// exportLeads writes every lead to path. A directory gets the dated
// default filename; "-" writes to stdout.
func exportLeads(ctx context.Context, p *outreach.Pipeline, path string, f export.Format) error {
	if path == "-" {
		return p.Export(ctx, os.Stdout, f, store.Filter{})
	}
	if info, err := os.Stat(path); (err == nil && info.IsDir()) || strings.HasSuffix(path, string(os.PathSeparator)) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		path = filepath.Join(path, export.Filename(f, time.Now()))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := p.Export(ctx, file, f, store.Filter{}); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported leads to %s\n", path)
	return nil
}
