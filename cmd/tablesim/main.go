package main

import (
	"fmt"
	"math"
	"math/bits"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/giftpool/backend/internal/game"
)

var (
	configFile string
	seed       int64
	maxFrames  int
	stepMillis float64
	pullX      float64
	pullY      float64
	games      int
	maxShots   int
	outFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tablesim",
		Short: "headless billiards table simulator",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "table rules file (yaml)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	targetsCmd := &cobra.Command{
		Use:   "targets",
		Short: "list feasible target sums for the catalog",
		RunE:  listTargets,
	}

	shootCmd := &cobra.Command{
		Use:   "shoot",
		Short: "take one shot and print what happens",
		RunE:  shootOnce,
	}
	shootCmd.Flags().Float64Var(&pullX, "dx", 200, "pull vector x")
	shootCmd.Flags().Float64Var(&pullY, "dy", 0, "pull vector y")
	shootCmd.Flags().IntVar(&maxFrames, "frames", 3000, "frame cap")
	shootCmd.Flags().Float64Var(&stepMillis, "step", 0, "frame step in ms (0 = tick rate)")

	autoplayCmd := &cobra.Command{
		Use:   "autoplay",
		Short: "play whole games with a random shooter",
		RunE:  autoplay,
	}
	autoplayCmd.Flags().IntVar(&games, "games", 20, "number of games")
	autoplayCmd.Flags().IntVar(&maxShots, "max-shots", 500, "shot cap per game")
	autoplayCmd.Flags().IntVar(&maxFrames, "frames", 3000, "settle frame cap per shot")
	autoplayCmd.Flags().Float64Var(&stepMillis, "step", 0, "frame step in ms (0 = tick rate)")

	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "print the effective table rules",
		RunE:  showRules,
	}
	rulesCmd.Flags().StringVar(&outFile, "out", "", "write rules to this yaml file instead")

	rootCmd.AddCommand(targetsCmd, shootCmd, autoplayCmd, rulesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadRules() (game.Rules, error) {
	if configFile == "" {
		return game.DefaultRules(), nil
	}
	return game.LoadRules(configFile)
}

func frameStep(rules game.Rules) float64 {
	if stepMillis > 0 {
		return stepMillis
	}
	return rules.TickIntervalMillis()
}

func listTargets(cmd *cobra.Command, args []string) error {
	rules, err := loadRules()
	if err != nil {
		return err
	}

	targets := game.FeasibleTargets(rules)
	if len(targets) == 0 {
		fmt.Printf("no subset of %d+ balls exists; every game targets the full catalog sum %d\n",
			rules.MinPocketCount, rules.CatalogSum())
		return nil
	}

	// Count qualifying subsets per sum so the histogram shows which targets
	// come up often and which are one-of-a-kind.
	values := rules.CatalogValues()
	counts := make(map[int]int)
	for mask := uint32(1); mask < uint32(1)<<len(values); mask++ {
		if bits.OnesCount32(mask) < rules.MinPocketCount {
			continue
		}
		sum := 0
		for i, v := range values {
			if mask&(1<<i) != 0 {
				sum += v
			}
		}
		counts[sum]++
	}

	fmt.Printf("catalog: %v (sum %d)\n", values, rules.CatalogSum())
	fmt.Printf("feasible targets (%d+ balls): %d sums from %d to %d\n\n",
		rules.MinPocketCount, len(targets), targets[0], targets[len(targets)-1])

	data := make([]float64, len(targets))
	for i, t := range targets {
		data[i] = float64(counts[t])
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("subsets per target sum (%d..%d)", targets[0], targets[len(targets)-1])),
	)
	fmt.Println(graph)

	return nil
}

func shootOnce(cmd *cobra.Command, args []string) error {
	rules, err := loadRules()
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))
	engine := game.NewEngine(rules)
	state := game.NewTableState(rules, engine.Table, rng)

	cue := state.Cue()
	if cue == nil {
		return fmt.Errorf("no cue ball on the table")
	}

	state, _ = engine.BeginAim(state, cue.Pos)
	release := cue.Pos.Plus(game.NewVec2(pullX, pullY))
	state, shot, fired := engine.ReleaseAim(state, release)
	if !fired {
		return fmt.Errorf("shot did not fire (zero pull?)")
	}

	fmt.Printf("target sum: %d\n", state.TargetSum)
	fmt.Printf("shot: power %.1f velocity (%.1f, %.1f)\n\n", shot.Power, shot.Velocity.X, shot.Velocity.Y)

	step := frameStep(rules)
	frames := 0
	for ; frames < maxFrames; frames++ {
		result := engine.Step(state, step, rng)
		state = result.State

		for _, ev := range result.Events {
			switch ev.Type {
			case game.EventBall:
				fmt.Printf("frame %4d: ball %d hits ball %d (speed %.1f)\n", frames, ev.Ball, ev.Other, ev.Speed)
			case game.EventPocket:
				fmt.Printf("frame %4d: ball %d pocketed\n", frames, ev.Ball)
			case game.EventFoul:
				fmt.Printf("frame %4d: cue scratched, respawned\n", frames)
			case game.EventReset:
				fmt.Printf("frame %4d: bust, table reset\n", frames)
			case game.EventSolved:
				fmt.Printf("frame %4d: solved!\n", frames)
			}
		}

		if !state.AnyMoving() {
			break
		}
	}

	fmt.Printf("\nsettled after %d frames (%.1fs simulated)\n", frames, float64(frames)*step/1000)
	fmt.Printf("pocketed: %d balls, sum %d of %d\n", state.PocketedCount, state.PocketedSum, state.TargetSum)
	fmt.Printf("balls on table: %d\n", state.ActiveCount())

	return nil
}

func autoplay(cmd *cobra.Command, args []string) error {
	rules, err := loadRules()
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))
	engine := game.NewEngine(rules)
	step := frameStep(rules)

	solved := 0
	var shotCounts []float64

	fmt.Printf("playing %d games, random shooter, shot cap %d\n\n", games, maxShots)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GAME\tTARGET\tSHOTS\tRESULT")

	for g := 0; g < games; g++ {
		state := game.NewTableState(rules, engine.Table, rng)
		shots := 0

		for shots < maxShots && !state.Solved {
			cue := state.Cue()
			if cue == nil || !cue.Active {
				break
			}

			angle := rng.Float64() * 2 * math.Pi
			pull := 100 + rng.Float64()*1900
			release := cue.Pos.Plus(game.NewVec2(math.Cos(angle)*pull, math.Sin(angle)*pull))

			state, _ = engine.BeginAim(state, cue.Pos)
			next, _, fired := engine.ReleaseAim(state, release)
			state = next
			if !fired {
				continue
			}
			shots++

			for f := 0; f < maxFrames; f++ {
				result := engine.Step(state, step, rng)
				state = result.State
				if !state.AnyMoving() {
					break
				}
			}
		}

		result := "gave up"
		if state.Solved {
			result = "solved"
			solved++
			shotCounts = append(shotCounts, float64(shots))
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", g+1, state.TargetSum, shots, result)
	}
	w.Flush()

	fmt.Printf("\nsolved %d of %d games\n", solved, games)
	if len(shotCounts) > 1 {
		total := 0.0
		for _, s := range shotCounts {
			total += s
		}
		fmt.Printf("average shots to solve: %.1f\n\n", total/float64(len(shotCounts)))

		graph := asciigraph.Plot(shotCounts,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("shots to solve per solved game"),
		)
		fmt.Println(graph)
	}

	return nil
}

func showRules(cmd *cobra.Command, args []string) error {
	rules, err := loadRules()
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := game.SaveRules(outFile, rules); err != nil {
			return err
		}
		fmt.Printf("wrote rules to %s\n", outFile)
		return nil
	}

	fmt.Printf("table: %.0fx%.0f, ball radius %.0f, pocket radius %.0f\n",
		rules.TableWidth, rules.TableHeight, rules.BallRadius, rules.PocketRadius)
	fmt.Printf("friction base: %.2f, min speed: %.2f, time scale: %.0f\n",
		rules.FrictionBase, rules.MinSpeed, rules.TimeScale)
	fmt.Printf("shot: power scale %.2f, max speed %.0f, aim tolerance %.0f\n",
		rules.PowerScale, rules.MaxShotSpeed, rules.AimTolerance)
	fmt.Printf("win: %d+ balls, solve delay %dms, tick %dhz\n",
		rules.MinPocketCount, rules.SolveDelayMillis, rules.TickHz)
	fmt.Printf("catalog: %v\n", rules.CatalogValues())

	return nil
}
