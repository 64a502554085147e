package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/james-see/jazzshed/pkg/export"
	"github.com/james-see/jazzshed/pkg/harmony"
)

var (
	category   string
	outputFile string

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E0A526"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
)

var tunesCmd = &cobra.Command{
	Use:   "tunes",
	Short: "List the tune library",
	Args:  cobra.NoArgs,
	RunE:  runTunes,
}

var chartCmd = &cobra.Command{
	Use:   "chart <tune-id>",
	Short: "Print a chord chart in the selected transposition",
	Args:  cobra.ExactArgs(1),
	RunE:  runChart,
}

var patternsCmd = &cobra.Command{
	Use:   "patterns <tune-id>",
	Short: "Detect ii-V-I, minor ii-V-i and turnaround patterns",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatterns,
}

var transposeCmd = &cobra.Command{
	Use:   "transpose <symbol>...",
	Short: "Transpose concert-pitch chord symbols",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTranspose,
}

var scalesCmd = &cobra.Command{
	Use:   "scales <tune-id>",
	Short: "List the scales a tune requires",
	Args:  cobra.ExactArgs(1),
	RunE:  runScales,
}

var guideCmd = &cobra.Command{
	Use:   "guide <symbol>...",
	Short: "Show the recommended scale and guide tones for chords",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGuide,
}

var studyCmd = &cobra.Command{
	Use:   "study <tune-id>",
	Short: "Print the form roadmap and four-chord recall cards",
	Args:  cobra.ExactArgs(1),
	RunE:  runStudy,
}

var exportCmd = &cobra.Command{
	Use:   "export <tune-id>",
	Short: "Export a chart as a block-chord MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	tunesCmd.Flags().StringVarP(&category, "category", "c", "", "Filter by category")

	for _, c := range []*cobra.Command{chartCmd, patternsCmd, scalesCmd, studyCmd, exportCmd, practiceCmd} {
		c.Flags().StringVar(&variant, "variant", "", "Variant name or index")
	}

	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path (default <tune-id>.mid)")
}

func transposition() harmony.Transposition {
	return shed.cfg.Practice.Transposition
}

// loadTune resolves the tune and the --variant flag. An unknown variant is
// an error here rather than a silent fallback.
func loadTune(id string) (harmony.Tune, int, error) {
	t, err := shed.lib.Get(id)
	if err != nil {
		return harmony.Tune{}, -1, err
	}
	v := t.VariantIndex(variant)
	if variant != "" && v < 0 {
		names := make([]string, 0, len(t.Variants))
		for _, tv := range t.Variants {
			names = append(names, tv.Name)
		}
		if len(names) == 0 {
			return harmony.Tune{}, -1, fmt.Errorf("%s has no variants", t.Title)
		}
		return harmony.Tune{}, -1, fmt.Errorf("unknown variant %q (have %s)", variant, strings.Join(names, ", "))
	}
	return t, v, nil
}

func runTunes(cmd *cobra.Command, args []string) error {
	tunes := shed.lib.List(harmony.Category(category))
	if len(tunes) == 0 {
		return fmt.Errorf("no tunes in category %q", category)
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "TITLE", "COMPOSER", "KEY", "FORM", "CATEGORY", "MASTERY").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, t := range tunes {
		tbl.Row(t.ID, t.Title, t.Composer, t.Key, t.Form, string(t.Category), string(t.Mastery))
	}
	fmt.Println(tbl)
	return nil
}

func runChart(cmd *cobra.Command, args []string) error {
	t, v, err := loadTune(args[0])
	if err != nil {
		return err
	}
	to := transposition()

	fmt.Println(headerStyle.Render(t.Title))
	fmt.Println(dimStyle.Render(fmt.Sprintf("%s • Key %s • %s • %s • %s-instrument",
		t.Composer, harmony.Transpose(t.Key, to), t.Form, t.Tempo, to)))
	if v >= 0 {
		fmt.Println(dimStyle.Render("Variant: " + t.Variants[v].Name))
	}
	fmt.Println()

	for _, sec := range harmony.GroupMeasures(harmony.TransposeSections(t.ActiveSections(v), to)) {
		fmt.Println(sectionStyle.Render(sec.Name))
		var line strings.Builder
		for i, bar := range sec.Measures {
			symbols := make([]string, len(bar.Chords))
			for j, c := range bar.Chords {
				symbols[j] = c.Symbol
			}
			fmt.Fprintf(&line, "| %-16s", strings.Join(symbols, " "))
			if (i+1)%4 == 0 || i == len(sec.Measures)-1 {
				fmt.Println(line.String() + "|")
				line.Reset()
			}
		}
	}

	if t.PracticeTools != nil && len(t.PracticeTools.SoloingTips) > 0 {
		fmt.Println()
		fmt.Println(headerStyle.Render("Soloing tips"))
		for _, tip := range t.PracticeTools.SoloingTips {
			fmt.Printf("  • %s\n", tip)
		}
	}
	return nil
}

func runPatterns(cmd *cobra.Command, args []string) error {
	t, v, err := loadTune(args[0])
	if err != nil {
		return err
	}
	to := transposition()

	patterns := harmony.ScanTune(&t, v)
	if len(patterns) == 0 {
		fmt.Println("No patterns found")
		return nil
	}
	for _, p := range patterns {
		p = p.Transposed(to)
		fmt.Printf("%-13s in %-3s beats %5.1f-%-5.1f %-24s %s\n",
			p.Type, p.Key, p.StartBeat, p.EndBeat, strings.Join(p.Chords, " "), dimStyle.Render(p.Type.ScaleHint()))
	}
	return nil
}

func runTranspose(cmd *cobra.Command, args []string) error {
	to := transposition()
	for _, symbol := range args {
		if _, ok := harmony.RootOf(symbol); !ok {
			return fmt.Errorf("not a chord symbol: %q", symbol)
		}
		fmt.Printf("%-10s → %s (%s)\n", symbol, harmony.Transpose(symbol, to), to)
	}
	return nil
}

func runScales(cmd *cobra.Command, args []string) error {
	t, v, err := loadTune(args[0])
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("Scales for " + t.Title))
	for _, u := range harmony.RequiredScales(t.ActiveSections(v)) {
		fmt.Printf("  %-14s first at %s bar %d (%s)\n", u.Family, u.Section, u.Measure, harmony.Transpose(u.Chord, transposition()))
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Technique reference"))
	for _, s := range harmony.ScaleCatalogue {
		fmt.Printf("  %-15s %-18s %s\n", s.Name, s.Intervals, dimStyle.Render(s.Description))
	}
	return nil
}

func runGuide(cmd *cobra.Command, args []string) error {
	to := transposition()
	for _, symbol := range args {
		display := harmony.Transpose(symbol, to)
		gt, ok := harmony.GuideTonesOf(display)
		if !ok {
			return fmt.Errorf("not a chord symbol: %q", symbol)
		}
		fmt.Printf("%-10s %-26s 3rd %-2s 7th %s\n", display, harmony.RecommendedScale(display), gt.Third, gt.Seventh)
	}
	return nil
}

func runStudy(cmd *cobra.Command, args []string) error {
	t, v, err := loadTune(args[0])
	if err != nil {
		return err
	}
	sections := harmony.TransposeSections(t.ActiveSections(v), transposition())

	names := make([]string, len(sections))
	for i, sec := range sections {
		names[i] = sec.Name
	}
	fmt.Println(headerStyle.Render("Form: " + strings.Join(names, " → ")))
	fmt.Println()

	for i, card := range harmony.Chunk(harmony.FlattenChords(sections), 4) {
		symbols := make([]string, len(card))
		for j, c := range card {
			symbols[j] = c.Symbol
		}
		fmt.Printf("%3d  %s\n", i+1, strings.Join(symbols, "  "))
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	t, v, err := loadTune(args[0])
	if err != nil {
		return err
	}
	to := transposition()

	output := outputFile
	if output == "" {
		output = t.ID + ".mid"
		if to != harmony.TransposeC {
			output = fmt.Sprintf("%s-%s.mid", t.ID, strings.ToLower(string(to)))
		}
	}

	if err := export.NewMIDIExporter().WriteMIDIFile(export.ChartFromTune(t, v, to), output); err != nil {
		return err
	}

	sum, err := export.InspectFile(output)
	if err != nil {
		return fmt.Errorf("failed to read back %s: %w", output, err)
	}
	fmt.Printf("Exported %s -> %s\n", t.Title, output)
	fmt.Printf("  %.0f BPM, %d sections, %d chords, %.0f beats\n", sum.BPM, len(sum.Markers), sum.Chords, sum.Beats)
	shed.log.Debug("midi exported", "tune", t.ID, "path", output)
	return nil
}
