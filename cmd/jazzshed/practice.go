package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/james-see/jazzshed/pkg/advice"
	"github.com/james-see/jazzshed/pkg/harmony"
	"github.com/james-see/jazzshed/pkg/journal"
	"github.com/james-see/jazzshed/pkg/transport"
)

var (
	loops     int
	tuneID    string
	recent    int
	sessionIn journal.Session
)

var practiceCmd = &cobra.Command{
	Use:   "practice <tune-id>",
	Short: "Play along with a beat clock, printing each chord as it arrives",
	Args:  cobra.ExactArgs(1),
	RunE:  runPractice,
}

var momentCmd = &cobra.Command{
	Use:   "moment",
	Short: "Log and list quick practice notes",
}

var momentAddCmd = &cobra.Command{
	Use:   "add <tune-id> <note>...",
	Short: "Log a quick moment against a tune",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runMomentAdd,
}

var momentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List quick moments, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runMomentList,
}

var momentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a quick moment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(func(ctx context.Context, j *journal.Journal) error {
			if err := j.DeleteMoment(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		})
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Log and list practice sessions",
}

var sessionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a practice session (minutes per pillar)",
	Args:  cobra.NoArgs,
	RunE:  runSessionAdd,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List practice sessions with pillar totals",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a practice session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(func(ctx context.Context, j *journal.Journal) error {
			if err := j.DeleteSession(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		})
	},
}

var adviceCmd = &cobra.Command{
	Use:   "advice <tune-id>",
	Short: "Ask the coach for a practice strategy and drill",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdvice,
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Review practice balance over the last seven sessions",
	Args:  cobra.NoArgs,
	RunE:  runBalance,
}

func init() {
	practiceCmd.Flags().IntVar(&loops, "loops", 1, "Choruses to play (0 plays until interrupted)")

	momentListCmd.Flags().StringVar(&tuneID, "tune", "", "Only moments for this tune")
	momentCmd.AddCommand(momentAddCmd, momentListCmd, momentDeleteCmd)

	f := sessionAddCmd.Flags()
	f.IntVar(&sessionIn.ToneTime, "tone", 0, "Minutes on tone")
	f.IntVar(&sessionIn.TechniqueTime, "technique", 0, "Minutes on technique")
	f.IntVar(&sessionIn.TunesTime, "tunes", 0, "Minutes on tunes")
	f.IntVar(&sessionIn.TranscriptionsTime, "transcriptions", 0, "Minutes on transcriptions")
	f.IntVar(&sessionIn.Duration, "duration", 0, "Total minutes (default: sum of pillars)")
	f.StringVar(&sessionIn.Notes, "notes", "", "Session notes")
	sessionListCmd.Flags().IntVarP(&recent, "recent", "n", 0, "Only the last n sessions")
	sessionCmd.AddCommand(sessionAddCmd, sessionListCmd, sessionDeleteCmd)
}

// chordPosition is a chord with its bar and absolute start beat
type chordPosition struct {
	section string
	bar     int
	chord   harmony.Chord
	start   float64
}

func positions(sections []harmony.SectionMeasures) []chordPosition {
	var out []chordPosition
	for _, sec := range sections {
		for _, bar := range sec.Measures {
			beat := bar.StartBeat
			for _, c := range bar.Chords {
				out = append(out, chordPosition{section: sec.Name, bar: bar.Number, chord: c, start: beat})
				beat += c.Duration
			}
		}
	}
	return out
}

func runPractice(cmd *cobra.Command, args []string) error {
	t, v, err := loadTune(args[0])
	if err != nil {
		return err
	}
	to := transposition()

	active := t.ActiveSections(v)
	total := harmony.TotalBeats(active)
	if total == 0 {
		return fmt.Errorf("%s has no chords", t.Title)
	}
	chart := positions(harmony.GroupMeasures(harmony.TransposeSections(active, to)))
	patterns := harmony.ScanTune(&t, v)

	ctx, stop := signalContext()
	defer stop()

	beats := make(chan transport.Tick, 1)
	clock := transport.NewClock(transport.Options{
		BPM:        t.BPM(transport.DefaultBPM),
		TotalBeats: total,
		Logger:     shed.log.Logger,
		OnTick: func(tick transport.Tick) {
			select {
			case beats <- tick:
			default:
			}
		},
	})

	fmt.Printf("%s at %.0f BPM (%s-instrument). Ctrl+C to stop.\n", t.Title, t.BPM(transport.DefaultBPM), to)
	// announce prints every chord that starts within the beat
	announce := func(beat float64) {
		for _, pos := range chart {
			if pos.start < beat || pos.start >= beat+1 {
				continue
			}
			line := fmt.Sprintf("%-4s bar %-3d %-10s %s", pos.section, pos.bar, pos.chord.Symbol, dimStyle.Render(harmony.RecommendedScale(pos.chord.Symbol)))
			if p, ok := harmony.PatternAt(patterns, pos.start); ok && p.StartBeat == pos.start {
				line += "  ◆ " + string(p.Type)
			}
			fmt.Println(line)
		}
	}
	announce(0)

	if err := clock.Start(ctx); err != nil {
		return err
	}
	defer clock.Stop()

	chorus, last := 1, 0.0
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case tick := <-beats:
			wrapped := tick.Beat < last
			last = tick.Beat
			if wrapped {
				if loops > 0 && chorus >= loops {
					return nil
				}
				chorus++
				fmt.Println(dimStyle.Render(fmt.Sprintf("-- chorus %d --", chorus)))
			}
			announce(tick.Beat)
		}
	}
}

func withJournal(fn func(ctx context.Context, j *journal.Journal) error) error {
	j, err := shed.openJournal()
	if err != nil {
		return err
	}
	defer j.Close()
	return fn(context.Background(), j)
}

func runMomentAdd(cmd *cobra.Command, args []string) error {
	if _, err := shed.lib.Get(args[0]); err != nil {
		return err
	}
	return withJournal(func(ctx context.Context, j *journal.Journal) error {
		m, err := j.AddMoment(ctx, journal.QuickMoment{Tune: args[0], Note: strings.Join(args[1:], " ")})
		if err != nil {
			return err
		}
		fmt.Printf("Logged %s for %s\n", m.ID, m.Tune)
		return nil
	})
}

func runMomentList(cmd *cobra.Command, args []string) error {
	return withJournal(func(ctx context.Context, j *journal.Journal) error {
		moments, err := j.Moments(ctx, tuneID)
		if err != nil {
			return err
		}
		if len(moments) == 0 {
			fmt.Println("No moments logged")
			return nil
		}
		for _, m := range moments {
			fmt.Printf("%s  %s  %-16s %s\n", m.Time.Format("2006-01-02 15:04"), dimStyle.Render(m.ID), m.Tune, m.Note)
		}
		return nil
	})
}

func runSessionAdd(cmd *cobra.Command, args []string) error {
	return withJournal(func(ctx context.Context, j *journal.Journal) error {
		s, err := j.AddSession(ctx, sessionIn)
		if err != nil {
			return err
		}
		if s.Duration == 0 {
			shed.log.Warn("empty session logged", "id", s.ID)
		}
		fmt.Printf("Logged %s: %d minutes\n", s.ID, s.Duration)
		return nil
	})
}

func runSessionList(cmd *cobra.Command, args []string) error {
	return withJournal(func(ctx context.Context, j *journal.Journal) error {
		n := -1
		if recent > 0 {
			n = recent
		}
		sessions, err := j.RecentSessions(ctx, n)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions logged")
			return nil
		}
		for _, s := range sessions {
			fmt.Printf("%s  %s  %3d min  tone %-3d technique %-3d tunes %-3d transcriptions %-3d %s\n",
				s.Date.Format("2006-01-02"), dimStyle.Render(s.ID), s.Duration, s.ToneTime, s.TechniqueTime, s.TunesTime, s.TranscriptionsTime, s.Notes)
		}

		p := journal.PillarTotals(sessions)
		fmt.Printf("\nTotals: tone %d, technique %d, tunes %d, transcriptions %d (%d min)\n",
			p.Tone, p.Technique, p.Tunes, p.Transcriptions, p.Total)
		if neglected := p.Neglected(0.10); len(neglected) > 0 {
			fmt.Printf("Neglected: %s\n", strings.Join(neglected, ", "))
		}
		return nil
	})
}

func runAdvice(cmd *cobra.Command, args []string) error {
	t, err := shed.lib.Get(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), shed.cfg.Advice.Timeout+5*time.Second)
	defer cancel()

	req := advice.BuildPracticeRequest(t, transposition())
	for _, h := range req.Hints {
		fmt.Println(dimStyle.Render(h.String()))
	}
	fmt.Println()

	res := shed.adviceService(ctx).RequestPracticeAdvice(ctx, req)
	adv := res.OrElse(advice.FallbackPracticeAdvice)
	fmt.Println(adv.Strategy)
	fmt.Println()
	fmt.Println(headerStyle.Render(adv.Drill.Title))
	fmt.Println(adv.Drill.Description)
	if reason := res.Reason(); reason != nil && !errors.Is(reason, advice.ErrDisabled) {
		fmt.Println(dimStyle.Render(fmt.Sprintf("(offline: %v)", reason)))
	}
	return nil
}

func runBalance(cmd *cobra.Command, args []string) error {
	return withJournal(func(ctx context.Context, j *journal.Journal) error {
		sessions, err := j.RecentSessions(ctx, 7)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			return errors.New("no sessions logged yet")
		}

		ctx, cancel := context.WithTimeout(ctx, shed.cfg.Advice.Timeout+5*time.Second)
		defer cancel()

		res := shed.adviceService(ctx).RequestBalanceAnalysis(ctx, sessions)
		analysis := res.OrElse(advice.FallbackBalanceAnalysis)
		fmt.Println(analysis.Analysis)
		fmt.Println()
		for _, point := range analysis.CoachingPoints {
			fmt.Printf("  • %s\n", point)
		}
		return nil
	})
}
