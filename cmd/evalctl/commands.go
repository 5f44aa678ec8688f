package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/grading"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/logging"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/performance"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/rulefile"
)

type rootFlags struct {
	ruleBase string
	fallback bool
	asJSON   bool
	verbose  bool
}

func newRootCommand() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:          "evalctl",
		Short:        "Fuzzy student performance evaluation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "warn"
			if f.verbose {
				level = "debug"
			}
			log, err := logging.New(true, level)
			if err != nil {
				return err
			}
			logging.SetLogger(log)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&f.ruleBase, "rulebase", performance.RuleBaseStandard, "standard, compact or a .toml/.yaml rule file")
	root.PersistentFlags().BoolVar(&f.fallback, "fallback", false, "Use the weighted-average estimate when no rule fires")
	root.PersistentFlags().BoolVar(&f.asJSON, "json", false, "Print JSON instead of tables")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(
		newEvaluateCommand(f),
		newBatchCommand(f),
		newRulesCommand(f),
		newClassifyCommand(f),
	)
	return root
}

func (f *rootFlags) engine() (*grading.Engine, error) {
	sys, err := rulefile.Build(f.ruleBase)
	if err != nil {
		return nil, err
	}
	opts := []grading.Option{grading.WithLogger(logging.Logger())}
	if f.fallback {
		opts = append(opts, grading.WithFallback(grading.WeightedAverage))
	}
	return grading.New(sys, opts...), nil
}

func newEvaluateCommand(f *rootFlags) *cobra.Command {
	var (
		p          performance.Profile
		file       string
		motivation string
		learner    string
		teaching   string
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate one student",
		Long: `Evaluate one student from flags or from a JSON profile (--file, "-" for stdin).

  evalctl evaluate --student-id s1 --name Ana --theory1 8 --theory2 7 --practical 9 \
    --group 8 --attendance 90 --participation 7 --socio 6 --context 5 --motivation high`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file != "" {
				data, err := readInput(cmd, file)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(data, &p); err != nil {
					return errors.Wrap(err, "decode profile")
				}
			} else {
				var err error
				if p.Motivation, err = performance.ParseMotivation(motivation); err != nil {
					return err
				}
				if p.LearnerStyle, err = performance.ParseLearningStyle(learner); err != nil {
					return err
				}
				if p.TeachingMethod, err = performance.ParseLearningStyle(teaching); err != nil {
					return err
				}
			}
			if err := p.Validate(); err != nil {
				return err
			}
			eng, err := f.engine()
			if err != nil {
				return err
			}
			res, err := eng.Grade(cmd.Context(), p)
			if err != nil {
				return err
			}
			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return renderResult(cmd.OutOrStdout(), p, res)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&file, "file", "", "JSON profile to read instead of flags")
	fl.StringVar(&p.StudentID, "student-id", "", "Student identifier")
	fl.StringVar(&p.Name, "name", "", "Student name")
	fl.Float64Var(&p.Grades.Theory1, "theory1", 0, "Theory assessment 1 (0-10)")
	fl.Float64Var(&p.Grades.Theory2, "theory2", 0, "Theory assessment 2 (0-10)")
	fl.Float64Var(&p.Grades.Practical, "practical", 0, "Practical assessment (0-10)")
	fl.Float64Var(&p.Grades.Group, "group", 0, "Group assessment (0-10)")
	fl.Float64Var(&p.Attendance, "attendance", 0, "Attendance percent (0-100)")
	fl.Float64Var(&p.Participation, "participation", 0, "Participation (0-10)")
	fl.Float64Var(&p.SocioEmotional, "socio", 0, "Socio-emotional (0-10)")
	fl.Float64Var(&p.Context, "context", 0, "Context (0-10, lower is harder)")
	fl.StringVar(&motivation, "motivation", "medium", "high, medium or low")
	fl.StringVar(&learner, "learner-style", "visual", "visual, auditory or kinesthetic")
	fl.StringVar(&teaching, "teaching-method", "visual", "visual, auditory or kinesthetic")
	return cmd
}

func newBatchCommand(f *rootFlags) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "batch <profiles.json>",
		Short: "Evaluate a JSON array of profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var profiles []performance.Profile
			if err := json.Unmarshal(data, &profiles); err != nil {
				return errors.Wrap(err, "decode profiles")
			}
			eng, err := f.engine()
			if err != nil {
				return err
			}
			items, err := grading.Batch(cmd.Context(), grading.Validated(eng), profiles, workers)
			if err != nil {
				return err
			}
			failed := 0
			for _, it := range items {
				if it.Err != nil {
					failed++
					logging.Logger().Warn("profile not evaluated",
						zap.String(logging.FieldStudentID, profiles[it.Index].StudentID), zap.Error(it.Err))
				}
			}
			if f.asJSON {
				err = writeJSON(cmd.OutOrStdout(), batchJSON(items))
			} else {
				err = renderBatch(cmd.OutOrStdout(), profiles, items)
			}
			if err != nil {
				return err
			}
			if failed > 0 {
				return errors.Newf("%d of %d profiles failed", failed, len(items))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent evaluations (0 = GOMAXPROCS)")
	return cmd
}

type batchItemJSON struct {
	Index  int             `json:"index"`
	Result *grading.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func batchJSON(items []grading.BatchItem) []batchItemJSON {
	out := make([]batchItemJSON, len(items))
	for i, it := range items {
		out[i].Index = it.Index
		if it.Err != nil {
			out[i].Error = it.Err.Error()
			continue
		}
		res := it.Result
		out[i].Result = &res
	}
	return out
}

func newRulesCommand(f *rootFlags) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Export the rule base as TOML, YAML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def, err := rulefile.Resolve(f.ruleBase)
			if err != nil {
				return err
			}
			doc := rulefile.FromDefinition(def)
			var buf bytes.Buffer
			if format == "json" {
				err = writeJSON(&buf, doc)
			} else {
				err = rulefile.Encode(&buf, doc, rulefile.Format(format))
			}
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			return errors.Wrap(os.WriteFile(output, buf.Bytes(), 0o644), "write rules")
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "toml, yaml or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func newClassifyCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <score>",
		Short: "Print the label for a 0-100 score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return errors.Wrapf(err, "score %q", args[0])
			}
			label := performance.Classify(score)
			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"score": score, "label": label})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), label)
			return err
		},
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	return data, errors.Wrapf(err, "read %s", path)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderResult(w io.Writer, p performance.Profile, res grading.Result) error {
	data := pterm.TableData{
		{"Field", "Value"},
		{"Student", p.StudentID + " " + p.Name},
		{"Mean grade", fmt.Sprintf("%.2f", res.MeanGrade)},
		{"Adjusted grade", fmt.Sprintf("%.2f", res.AdjustedGrade)},
		{"Score", fmt.Sprintf("%.2f", res.Score)},
		{"Label", res.Label.String()},
		{"Source", string(res.Source)},
	}
	if res.Override != "" {
		data = append(data, []string{"Override", res.Override})
	}
	for _, m := range res.OutputMemberships {
		data = append(data, []string{"μ " + m.Term, fmt.Sprintf("%.3f", m.Degree)})
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}

func renderBatch(w io.Writer, profiles []performance.Profile, items []grading.BatchItem) error {
	data := pterm.TableData{{"#", "Student", "Score", "Label", "Source"}}
	for _, it := range items {
		row := []string{strconv.Itoa(it.Index + 1), profiles[it.Index].StudentID}
		if it.Err != nil {
			row = append(row, "-", "error", it.Err.Error())
		} else {
			row = append(row, fmt.Sprintf("%.2f", it.Result.Score), it.Result.Label.String(), string(it.Result.Source))
		}
		data = append(data, row)
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}
