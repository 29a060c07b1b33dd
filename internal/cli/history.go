// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Recorded sessions.
//
// Command: history [list|show ID|delete ID|clear|path] [--limit N]

package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jeranaias/heartline/internal/config"
	"github.com/jeranaias/heartline/internal/storage"
)

// defaultHistoryLimit is how many sessions "history" lists by default.
const defaultHistoryLimit = 20

// RecordSession stores rec in the history database. Sessions without a beat
// and configurations with history disabled are skipped.
func RecordSession(cfg *config.Config, rec storage.SessionRecord) error {
	if !cfg.History.Enabled || rec.Stats.Total == 0 {
		return nil
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		return err
	}
	store, err := storage.Open(path, cfg.History.Keep)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Save(ctx, rec); err != nil {
		return err
	}
	log.Printf("SESSION_RECORDED | id=%s source=%s beats=%d", rec.ID, rec.Source, rec.Stats.Total)
	return nil
}

// HandleHistory handles the "history" command.
func HandleHistory(args Args) error {
	return handleHistory(args, os.Stdout)
}

func handleHistory(args Args, w io.Writer) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		return NewCommandError("history", "locate", "could not resolve the history path", err)
	}

	if args.Subcommand == "path" {
		if args.JSON {
			return NewJSONResponse("history path", map[string]string{"path": path}).Write(w)
		}
		fmt.Fprintln(w, path)
		return nil
	}

	store, err := storage.Open(path, cfg.History.Keep)
	if err != nil {
		return NewCommandError("history", "open", "could not open the history database", err)
	}
	defer store.Close()
	ctx := context.Background()

	switch args.Subcommand {
	case "", "list", "ls":
		limit := defaultHistoryLimit
		if v := args.Option("limit", ""); v != "" {
			limit, err = strconv.Atoi(v)
			if err != nil || limit < 0 {
				return NewValidationErrorWithExample("--limit", v, "must be a non-negative integer", "--limit 50")
			}
		}
		recs, err := store.List(ctx, limit)
		if err != nil {
			return err
		}
		if args.JSON {
			if recs == nil {
				recs = []storage.SessionRecord{}
			}
			return NewJSONResponse("history", recs).Write(w)
		}
		fmt.Fprint(w, storage.FormatSessionList(recs))
		return nil

	case "show", "delete", "rm":
		if len(args.Raw) < 2 {
			return NewValidationErrorWithExample("id", "", "a session id is required", "history "+args.Subcommand+" 3f2a")
		}
		id := args.Raw[1]
		if args.Subcommand == "show" {
			rec, err := store.Get(ctx, id)
			if err != nil {
				return err
			}
			if args.JSON {
				return NewJSONResponse("history show", rec).Write(w)
			}
			writeSessionRecord(w, rec)
			return nil
		}
		if err := store.Delete(ctx, id); err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("history delete", map[string]string{"deleted": id}).Write(w)
		}
		fmt.Fprintln(w, SuccessStyle.Render("Deleted "+id))
		return nil

	case "clear":
		n, err := store.Clear(ctx)
		if err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("history clear", map[string]int{"deleted": n}).Write(w)
		}
		fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("Deleted %d sessions", n)))
		return nil

	default:
		return NewValidationErrorWithExample("history", args.Subcommand,
			"unknown subcommand (list, show, delete, clear, path)", "history show 3f2a")
	}
}

func writeSessionRecord(w io.Writer, rec storage.SessionRecord) {
	st := rec.Stats
	rows := [][2]string{
		{"Session", rec.ID},
		{"Source", rec.Source},
		{"Started", rec.StartedAt.Local().Format("2006-01-02 15:04:05")},
		{"Length", rec.Duration().Round(time.Second).String()},
		{"Beats", strconv.Itoa(st.Total)},
		{"Mean BPM", fmt.Sprintf("%.1f ± %.1f", st.Mean, st.StdDev)},
		{"Median BPM", fmt.Sprintf("%.1f", st.Median)},
		{"Range", fmt.Sprintf("%.0f-%.0f", st.Min, st.Max)},
		{"Last BPM", fmt.Sprintf("%.0f", st.Last)},
	}
	fmt.Fprintln(w, TitleStyle.Render("Session"))
	for _, r := range rows {
		fmt.Fprintln(w, RenderLabel(r[0])+ValueStyle.Render(r[1]))
	}
	fmt.Fprintln(w, DimStyle.Render("Simulated or relayed rates, not medical data."))
}
