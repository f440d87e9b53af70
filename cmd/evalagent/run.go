package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yuxuan/evalagent/internal/client"
	"github.com/yuxuan/evalagent/internal/config"
	"github.com/yuxuan/evalagent/internal/form"
	"github.com/yuxuan/evalagent/internal/observability"
	"github.com/yuxuan/evalagent/internal/schemas"
	"github.com/yuxuan/evalagent/internal/selection"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Complete every pending evaluation of the latest task",
	Long:  "Log in, pick the latest personnel-evaluation task, and submit a synthesized answer set for every course that still needs one, pausing between submissions.",
	RunE:  runRun,
}

var (
	runConfigPath      string
	runBaseURL         string
	runSSOURL          string
	runUsername        string
	runPassword        string
	runStrategy        string
	runDelayMillis     int
	runSpecialTeachers []string
	runVerbose         bool
)

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "Path to JSON config file")
	runCmd.Flags().StringVar(&runBaseURL, "base-url", "", "Evaluation portal root URL")
	runCmd.Flags().StringVar(&runSSOURL, "sso-url", "", "SSO login URL")
	runCmd.Flags().StringVarP(&runUsername, "username", "u", "", "SSO username")
	runCmd.Flags().StringVarP(&runPassword, "password", "p", "", "SSO password (overrides EVALAGENT_PASSWORD env var)")
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "", "Answer strategy: best, random, worst_passing, or worst")
	runCmd.Flags().IntVar(&runDelayMillis, "delay-ms", 0, "Pause between submissions in milliseconds")
	runCmd.Flags().StringSliceVar(&runSpecialTeachers, "special-teacher", nil, "Teacher evaluated with worst_passing regardless of strategy (repeatable)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress")

	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, _ []string) error {
	cfg, err := mergedConfig(config.Config{
		BaseURL:         runBaseURL,
		SSOURL:          runSSOURL,
		Username:        runUsername,
		Strategy:        runStrategy,
		DelayMillis:     runDelayMillis,
		SpecialTeachers: runSpecialTeachers,
		Verbose:         runVerbose,
	}, runConfigPath)
	if err != nil {
		return err
	}

	strategy, err := selection.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}

	password := runPassword
	if password == "" {
		password = os.Getenv("EVALAGENT_PASSWORD")
	}
	if cfg.Username == "" || password == "" {
		return fmt.Errorf("username and password are required (use --username/--password or EVALAGENT_PASSWORD)")
	}

	svc, err := client.New(&client.Options{BaseURL: cfg.BaseURL, SSOURL: cfg.SSOURL})
	if err != nil {
		return err
	}

	ctx := context.Background()
	printer := observability.NewPrinter(os.Stdout)

	if err := svc.Login(ctx, cfg.Username, password); err != nil {
		return err
	}

	task, err := svc.LatestTask(ctx)
	if err != nil {
		return err
	}
	if task == nil {
		printer.Stepf("no evaluation task is currently open")
		return nil
	}
	printer.PrintRunHeader(uuid.NewString(), task.Name)

	questionnaires, err := svc.QuestionnaireList(ctx, task.ID)
	if err != nil {
		return err
	}

	var all []client.Course
	for _, q := range questionnaires {
		courses, err := svc.CourseList(ctx, q.ID)
		if err != nil {
			return err
		}
		all = append(all, courses...)
	}
	if len(all) == 0 {
		printer.Stepf("no courses to evaluate")
		return nil
	}
	if cfg.Verbose {
		printer.PrintCourseCatalog(all)
	}

	specials := make(map[string]bool, len(cfg.SpecialTeachers))
	for _, name := range cfg.SpecialTeachers {
		specials[name] = true
	}
	delay := time.Duration(cfg.DelayMillis) * time.Millisecond

	for _, q := range questionnaires {
		printer.Stepf("questionnaire %q", q.Name)
		if err := svc.ConfirmPattern(ctx, q); err != nil {
			return err
		}

		courses, err := svc.CourseList(ctx, q.ID)
		if err != nil {
			return err
		}
		for _, course := range courses {
			if course.Finished() {
				continue
			}

			courseStrategy := strategy
			if specials[course.TeacherName] {
				courseStrategy = selection.StrategyWorstPassing
			}

			if err := evaluateCourse(ctx, svc, printer, course, courseStrategy); err != nil {
				return err
			}
			time.Sleep(delay)
		}
	}

	printer.Stepf("evaluation task complete")
	return nil
}

func evaluateCourse(ctx context.Context, svc *client.Client, printer *observability.Printer, course client.Course, strategy selection.Strategy) error {
	topic, err := svc.QuestionnaireTopic(ctx, course)
	if err != nil {
		return err
	}

	payload, err := form.Fill(topic, strategy, nil)
	if err != nil {
		return fmt.Errorf("synthesize answers for %s: %w", course.CourseName, err)
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload for %s: %w", course.CourseName, err)
	}
	if err := schemas.ValidateSubmission(encoded); err != nil {
		return fmt.Errorf("payload for %s failed shape check: %w", course.CourseName, err)
	}

	if err := svc.SubmitEvaluation(ctx, payload); err != nil {
		return err
	}
	printer.PrintSubmission(course, string(strategy), payload.Results[0].TotalScore)
	return nil
}

// mergedConfig merges CLI flag values over an optional config file over the
// built-in defaults, then validates the result.
func mergedConfig(flags config.Config, path string) (config.Config, error) {
	merged := flags
	if path != "" {
		fileCfg, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		merged = merged.MergeWithDefaults(*fileCfg)
	}
	merged = merged.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}
