package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/export"
	"github.com/san-kum/smear/internal/motion"
	"github.com/san-kum/smear/internal/palette"
	"github.com/san-kum/smear/internal/plan"
	"github.com/san-kum/smear/internal/scenario"
	"github.com/san-kum/smear/internal/trace"
	"github.com/san-kum/smear/internal/tui"
	"github.com/san-kum/smear/internal/tune"
)

var (
	dataDir           string
	configFile        string
	logFile           string
	seed              int64
	profile           string
	optionsFile       string
	stiffness         float64
	trailingStiffness float64
	damping           float64
	gradient          float64
	particles         bool
	frameRate         int
	svgScale          float64
	svgOut            string
	svgPath           bool
	metricName        string
	paramSpecs        []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "smear",
		Short: "terminal cursor smear animation lab",
		// Default to the interactive demo when no command given
		RunE: runDemo,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".smear", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "base config file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append runtime diagnostics to this file")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "replay a scenario and store its trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	runCmd.Flags().StringVar(&profile, "profile", "", "start from a named config profile")
	runCmd.Flags().StringVar(&optionsFile, "options", "", "options patch file (yaml)")
	runCmd.Flags().Float64Var(&stiffness, "stiffness", 0, "head corner stiffness")
	runCmd.Flags().Float64Var(&trailingStiffness, "trailing-stiffness", 0, "trailing corner stiffness")
	runCmd.Flags().Float64Var(&damping, "damping", 0, "velocity damping per step")
	runCmd.Flags().Float64Var(&gradient, "gradient", 0, "shade falloff exponent")
	runCmd.Flags().BoolVar(&particles, "particles", true, "emit particles")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	pathCmd := &cobra.Command{
		Use:   "path [run_id]",
		Short: "cursor path across the screen",
		Args:  cobra.ExactArgs(1),
		RunE:  pathPlot,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().Float64Var(&svgScale, "scale", 8, "pixels per cell")
	exportSVGCmd.Flags().StringVar(&svgOut, "out", "", "output file (stdout when empty)")
	exportSVGCmd.Flags().BoolVar(&svgPath, "trajectory", false, "render the centroid path instead of quads")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "replay a scenario in the terminal in real time",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "interactive full-screen demo",
		RunE:  runDemo,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the motion and plan pipeline",
		RunE:  benchPipeline,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios and config profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("scenarios:")
			for _, scn := range scenario.Presets() {
				fmt.Printf("  %-10s %s\n", scn.Name, scn.Description)
			}
			fmt.Println("\nprofiles:")
			for _, name := range config.ListPresets() {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scenario] [profile1] [profile2] ...",
		Short: "compare config profiles on the same scenario",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareProfiles,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [scenario]",
		Short: "grid-search spring parameters against a scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneScenario,
	}
	tuneCmd.Flags().StringVar(&metricName, "metric", "settle_mean", "metric to minimize")
	tuneCmd.Flags().StringArrayVar(&paramSpecs, "param", nil, "parameter range name=lo:hi:step (repeatable)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, pathCmd, exportCmd, exportCSVCmd, exportSVGCmd, benchCmd, liveCmd, demoCmd, presetsCmd, compareCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadScenario resolves a preset name first, then a yaml file path.
func loadScenario(name string) (*scenario.Scenario, error) {
	if scn, err := scenario.Preset(name); err == nil {
		return scn, nil
	}
	return scenario.Load(name)
}

// commandLogger builds the diagnostics logger: the log file when given,
// the fallback writer otherwise.
func commandLogger(fallback io.Writer) (*log.Logger, func(), error) {
	if logFile == "" {
		return log.New(fallback), func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f), func() { f.Close() }, nil
}

// baseConfig resolves the configuration that scenario options apply on
// top of: the named profile, the config file, or nil for the default.
func baseConfig() (*config.Config, error) {
	if profile != "" && configFile != "" {
		return nil, fmt.Errorf("--profile and --config are mutually exclusive")
	}
	if profile != "" {
		base := config.Preset(profile)
		if base == nil {
			return nil, fmt.Errorf("unknown profile: %s (available: %v)", profile, config.ListPresets())
		}
		return base, nil
	}
	if configFile != "" {
		return config.Load(configFile)
	}
	return nil, nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := commandLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()
	return tui.RunInteractive(logger)
}

func runScenario(cmd *cobra.Command, args []string) error {
	scn, err := loadScenario(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		scn.Seed = seed
	}

	base, err := baseConfig()
	if err != nil {
		return err
	}

	// An options file replaces the scenario's own options.
	if optionsFile != "" {
		data, err := os.ReadFile(optionsFile)
		if err != nil {
			return fmt.Errorf("read options: %w", err)
		}
		patch, err := config.ParsePatch(data)
		if err != nil {
			return fmt.Errorf("parse options: %w", err)
		}
		scn.Options = patch
	}

	// Flag overrides sit on top of everything else.
	params := map[string]float64{}
	if cmd.Flags().Changed("stiffness") {
		params["stiffness"] = stiffness
	}
	if cmd.Flags().Changed("trailing-stiffness") {
		params["trailing_stiffness"] = trailingStiffness
	}
	if cmd.Flags().Changed("damping") {
		params["damping"] = damping
	}
	if cmd.Flags().Changed("gradient") {
		params["gradient"] = gradient
	}
	if cmd.Flags().Changed("particles") {
		if particles {
			params["particles"] = 1
		} else {
			params["particles"] = 0
		}
	}
	if len(params) > 0 {
		patch, err := tune.Apply(scn.Options, params)
		if err != nil {
			return err
		}
		scn.Options = patch
	}

	st := trace.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	logger, closeLog, err := commandLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	fmt.Printf("replaying %s...\n", scn.Name)
	start := time.Now()

	res, err := scenario.RunWith(scn, base, logger)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	rows, cols := scn.Rows, scn.Cols
	if rows <= 0 {
		rows = 24
	}
	if cols <= 0 {
		cols = 80
	}
	runSeed := scn.Seed
	if runSeed == 0 {
		runSeed = 1
	}

	runID, err := st.Save(trace.RunMetadata{
		Scenario: scn.Name,
		Seed:     runSeed,
		Rows:     rows,
		Cols:     cols,
		Steps:    len(scn.Steps),
		Metrics:  res.Metrics,
	}, res.Frames)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", len(res.Frames))
	fmt.Println("\nmetrics:")
	for name, val := range res.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := trace.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSEED\tSTEPS\tFRAMES\tSETTLED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.0f\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Steps,
			run.Frames,
			run.Metrics["settled"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := trace.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("frames: %d\n\n", len(frames))

	series := []struct {
		caption string
		pick    func(trace.Frame) float64
	}{
		{"overlay demand", func(f trace.Frame) float64 { return float64(f.Demand) }},
		{"smear cells", func(f trace.Frame) float64 { return float64(f.Smear) }},
		{"particle cells", func(f trace.Frame) float64 { return float64(f.Particles) }},
		{"centroid column", func(f trace.Frame) float64 {
			return (f.Corners[1] + f.Corners[3] + f.Corners[5] + f.Corners[7]) / 4
		}},
	}

	for _, s := range series {
		data := make([]float64, len(frames))
		for i, fr := range frames {
			data[i] = s.pick(fr)
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func pathPlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := trace.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	rows, cols := float64(meta.Rows), float64(meta.Cols)
	if rows <= 0 {
		rows = 24
	}
	if cols <= 0 {
		cols = 80
	}

	fmt.Printf("cursor path: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n\n", meta.Scenario)

	width := 70
	height := 20
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	// Plot centroids; screen rows grow downward so no flip.
	for i, fr := range frames {
		var r, c float64
		for k := 0; k < 4; k++ {
			r += fr.Corners[2*k]
			c += fr.Corners[2*k+1]
		}
		r /= 4
		c /= 4

		px := int(c / cols * float64(width-1))
		py := int(r / rows * float64(height-1))
		if px >= 0 && px < width && py >= 0 && py < height {
			if i < len(frames)/3 {
				canvas[py][px] = '.'
			} else if i < 2*len(frames)/3 {
				canvas[py][px] = 'o'
			} else {
				canvas[py][px] = '●'
			}
		}
	}

	fmt.Printf("  %4d ┌", 0)
	for i := 0; i < width; i++ {
		fmt.Print("─")
	}
	fmt.Println("┐")

	for i := range canvas {
		if i == height/2 {
			fmt.Printf("  %4d │", int(rows)/2)
		} else {
			fmt.Print("       │")
		}
		fmt.Print(string(canvas[i]))
		fmt.Println("│")
	}

	fmt.Printf("  %4d └", int(rows)-1)
	for i := 0; i < width; i++ {
		fmt.Print("─")
	}
	fmt.Println("┘")

	fmt.Print("       0")
	for i := 0; i < width-8; i++ {
		fmt.Print(" ")
	}
	fmt.Printf("%d\n", int(cols)-1)

	fmt.Printf("\nLegend: . = early, o = middle, ● = late\n")

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := trace.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := trace.New(dataDir)
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	if len(frames) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time", "step", "action", "smear", "particles", "demand", "created", "budget",
		"r0", "c0", "r1", "c1", "r2", "c2", "r3", "c3"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, fr := range frames {
		row := []string{
			strconv.FormatFloat(fr.Time, 'f', 6, 64),
			strconv.Itoa(fr.Step),
			fr.Action,
			strconv.Itoa(fr.Smear),
			strconv.Itoa(fr.Particles),
			strconv.Itoa(fr.Demand),
			strconv.Itoa(fr.Created),
			strconv.Itoa(fr.Budget),
		}
		for _, v := range fr.Corners {
			row = append(row, strconv.FormatFloat(v, 'f', 3, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := trace.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	var doc string
	if svgPath {
		rows, cols := meta.Rows, meta.Cols
		if rows <= 0 {
			rows = 24
		}
		if cols <= 0 {
			cols = 80
		}
		doc = export.PathSVG(frames, int(float64(cols)*svgScale), int(float64(rows)*svgScale*2), "#00ff88")
		if doc == "" {
			return fmt.Errorf("not enough frames for a trajectory")
		}
	} else {
		doc = export.RunSVG(meta, frames, svgScale)
	}

	if svgOut == "" {
		fmt.Print(doc)
		return nil
	}
	if err := os.WriteFile(svgOut, []byte(doc), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	scn, err := loadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := baseConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := commandLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	p := tui.NewPlayer(frameRate)
	p.Base = base
	p.Logger = logger
	return p.Play(scn)
}

func compareProfiles(cmd *cobra.Command, args []string) error {
	scn, err := loadScenario(args[0])
	if err != nil {
		return err
	}
	profiles := args[1:]

	logger, closeLog, err := commandLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	fmt.Printf("comparing profiles on %s\n\n", scn.Name)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s  %-8s\n", "profile", "settle_mean", "demand_peak", "reuse", "frames")
	fmt.Println(strings.Repeat("-", 64))

	for _, name := range profiles {
		var base *config.Config
		if name != "default" {
			base = config.Preset(name)
			if base == nil {
				fmt.Printf("%-12s  unknown profile\n", name)
				continue
			}
		}

		res, err := scenario.RunWith(scn, base, logger)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		m := res.Metrics
		fmt.Printf("%-12s  %12.6f  %12.0f  %12.3f  %8.0f\n",
			name, m["settle_mean"], m["demand_peak"], m["reuse"], m["frames"])
	}

	return nil
}

func tuneScenario(cmd *cobra.Command, args []string) error {
	scn, err := loadScenario(args[0])
	if err != nil {
		return err
	}

	specs := paramSpecs
	if len(specs) == 0 {
		specs = []string{"stiffness=0.15:0.45:0.1", "damping=0.55:0.85:0.1"}
	}

	var names []string
	var ranges [][]float64
	for _, spec := range specs {
		name, vals, err := parseParamSpec(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	logger, closeLog, err := commandLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()
	evals := 0

	gs := tune.NewGridSearch(names, ranges)
	start := time.Now()
	best, bestVal, err := gs.Search(context.Background(), func(p map[string]float64) (map[string]float64, error) {
		evals++
		return tune.Score(scn, p, logger)
	}, metricName)
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no grid point produced metric %q", metricName)
	}

	fmt.Printf("evaluated %d combinations in %v\n\n", evals, time.Since(start))
	fmt.Printf("best %s: %.6f\n", metricName, bestVal)

	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %.4f\n", k, best[k])
	}

	return nil
}

func benchPipeline(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	pal, err := palette.Build(cfg.Color)
	if err != nil {
		return err
	}
	eng := motion.NewEngine(42)

	hops := []int{4, 16, 48}
	dts := []float64{0.008, 0.017, 0.033}

	fmt.Printf("benchmarking motion + plan\n\n")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HOP\tDT\tSTEPS\tCELLS\tTIME\tSTEPS/SEC")

	var curve []float64
	for _, hop := range hops {
		for _, dt := range dts {
			var st motion.State
			motion.Init(&st, motion.TargetQuad(10, 2, motion.ShapeBlock))
			target := motion.TargetQuad(10, 2+hop, motion.ShapeBlock)

			record := hop == hops[len(hops)-1] && dt == dts[1]
			steps, cells := 0, 0
			start := time.Now()
			for steps < 4000 {
				eng.Step(&st, cfg, target, dt, motion.ModeNormal)
				res := plan.Build(plan.Frame{
					Corners:   st.Corners,
					TargetRow: 10,
					TargetCol: 2 + hop,
					Particles: st.Particles,
					Rows:      24,
					Cols:      80,
					Bulge:     steps%2 == 1,
				}, cfg, pal, nil)
				steps++
				cells += len(res.Ops)
				if record {
					curve = append(curve, float64(len(res.Ops)))
				}
				if motion.Reached(&st, cfg, target, motion.ShapeBlock) {
					break
				}
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%.3fs\t%d\t%d\t%v\t%.0f\n",
				hop, dt, steps, cells, elapsed, float64(steps)/elapsed.Seconds())
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(curve) > 1 {
		fmt.Println()
		graph := asciigraph.Plot(curve,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("planned cells per step (hop=%d, dt=17ms)", hops[len(hops)-1])),
		)
		fmt.Println(graph)
	}
	return nil
}

func parseParamSpec(spec string) (string, []float64, error) {
	name, rng, ok := strings.Cut(spec, "=")
	if !ok {
		return "", nil, fmt.Errorf("bad parameter spec %q (want name=lo:hi:step)", spec)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("bad range in %q (want lo:hi:step)", spec)
	}

	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad range in %q: %w", spec, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad range in %q: %w", spec, err)
	}
	step, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad range in %q: %w", spec, err)
	}
	if step <= 0 || hi < lo {
		return "", nil, fmt.Errorf("bad range in %q: need lo <= hi and step > 0", spec)
	}

	var vals []float64
	for v := lo; v <= hi+step/2; v += step {
		vals = append(vals, v)
	}
	return name, vals, nil
}
