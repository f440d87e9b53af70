package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yuxuan/evalagent/internal/client"
	"github.com/yuxuan/evalagent/internal/config"
	"github.com/yuxuan/evalagent/internal/observability"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List the courses and teachers awaiting evaluation",
	RunE:  runCourses,
}

var (
	coursesConfigPath string
	coursesBaseURL    string
	coursesSSOURL     string
	coursesUsername   string
	coursesPassword   string
)

func init() {
	coursesCmd.Flags().StringVarP(&coursesConfigPath, "config", "c", "", "Path to JSON config file")
	coursesCmd.Flags().StringVar(&coursesBaseURL, "base-url", "", "Evaluation portal root URL")
	coursesCmd.Flags().StringVar(&coursesSSOURL, "sso-url", "", "SSO login URL")
	coursesCmd.Flags().StringVarP(&coursesUsername, "username", "u", "", "SSO username")
	coursesCmd.Flags().StringVarP(&coursesPassword, "password", "p", "", "SSO password (overrides EVALAGENT_PASSWORD env var)")

	rootCmd.AddCommand(coursesCmd)
}

func runCourses(_ *cobra.Command, _ []string) error {
	cfg, err := mergedConfig(config.Config{
		BaseURL:  coursesBaseURL,
		SSOURL:   coursesSSOURL,
		Username: coursesUsername,
	}, coursesConfigPath)
	if err != nil {
		return err
	}

	password := coursesPassword
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

	printer.PrintCourseCatalog(all)
	return nil
}
