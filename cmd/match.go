package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/project-matcher/internal/ai"
	"github.com/spigell/project-matcher/internal/catalog"
	"github.com/spigell/project-matcher/internal/filtering"
)

const (
	PromptDetails               = "Show project details"
	PromptDismiss               = "Dismiss projects"
	PromptReportByOrganizations = "Report by organizations"
	PromptExit                  = "Exit"
	PromptBack                  = "back"
	PromptDismissAll            = "Dismiss all recommended projects"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptDetails, PromptDismiss, PromptReportByOrganizations, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Find the volunteer projects that fit a student best",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("description", "", "free-text description of the student; wins over skills and interests")
	matchCmd.Flags().StringSlice("skills", nil, "student skills, comma separated")
	matchCmd.Flags().StringSlice("interests", nil, "student interests, comma separated")
	matchCmd.Flags().String("field-of-study", "", "student field of study")
	matchCmd.Flags().StringP("language", "l", "", "language of the reasoning: en or cs")
	matchCmd.Flags().String("catalog-file", "", "YAML or JSON file with projects")
	matchCmd.Flags().String("catalog-url", "", "base url of the projects backend; wins over catalog-file")
	matchCmd.Flags().StringP("exclude-file", "e", "", "file with dismissed projects. Default is unset.")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "print recommendations and exit without asking")

	viper.BindPFlag("profile.description", matchCmd.Flags().Lookup("description"))
	viper.BindPFlag("profile.skills", matchCmd.Flags().Lookup("skills"))
	viper.BindPFlag("profile.interests", matchCmd.Flags().Lookup("interests"))
	viper.BindPFlag("profile.field-of-study", matchCmd.Flags().Lookup("field-of-study"))
	viper.BindPFlag("ai.language", matchCmd.Flags().Lookup("language"))
	viper.BindPFlag("catalog.file", matchCmd.Flags().Lookup("catalog-file"))
	viper.BindPFlag("catalog.url", matchCmd.Flags().Lookup("catalog-url"))
	viper.BindPFlag("catalog.exclude-file", matchCmd.Flags().Lookup("exclude-file"))
}

func match(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the project-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	lang, err := ai.ParseLanguage(config.AI.Language)
	if err != nil {
		logger.Fatal("parsing output language", zap.Error(err))
	}

	source, err := newCatalogSource(config.Catalog, logger)
	if err != nil {
		logger.Fatal("preparing the catalog", zap.Error(err),
			zap.String("hint", "set catalog.file or catalog.url in the configuration file or use --catalog-file"),
		)
	}

	projects, err := source.Projects(ctx)
	if err != nil {
		logger.Fatal("getting projects", zap.Error(err))
	}

	logger.Info("getting projects", zap.Int("count", projects.Len()))

	steps := filterSteps(config.Catalog)
	projects, err = filtering.Run(ctx, filterConfig(config.Catalog), filtering.Deps{Logger: logger}, steps, projects)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	pretty, _ = json.MarshalIndent(filtering.Describe(steps), "", "  ")
	logger.Debug(fmt.Sprintf("filters: \n %s", pretty))

	if projects.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no projects left after filters"))
		return
	}

	matcher, mode, err := newMatcher(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building ai matcher", zap.Error(err))
	}

	description := config.Profile.Describe(lang)
	logger.Info("looking for matches",
		zap.String("mode", string(mode)),
		zap.Int("candidates", projects.Len()),
	)
	logger.Debug("student description", zap.String("description", description))

	result, err := matcher.FindMatches(ctx, description, projects.Candidates())
	if err != nil {
		logger.Fatal(ai.FailureMessage(lang),
			zap.String("failure_kind", string(ai.KindOf(err))),
			zap.Error(err),
		)
	}

	recommendations := projects.ResolveMatches(result)
	if len(recommendations) == 0 {
		logger.Info("exiting", zap.String("reason", "no matching projects found"))
		return
	}

	printRecommendations(cmd.OutOrStdout(), recommendations)

	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); autoApprove {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, cmd.OutOrStdout(), logger, config, projects, recommendations); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, out io.Writer, logger *zap.Logger, config *Config, projects *catalog.Projects, recommendations []catalog.Recommendation) error {
	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptDetails:
		return showDetails(out, recommendations)
	case PromptDismiss:
		return manualDismiss(logger, config.Catalog.ExcludeFile, recommendations)
	case PromptReportByOrganizations:
		pretty, _ := json.MarshalIndent(projects.ReportByOrganization(), "", "  ")
		logger.Info(string(pretty), zap.Int("projects count", projects.Len()))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func printRecommendations(out io.Writer, recommendations []catalog.Recommendation) {
	for i, rec := range recommendations {
		title := rec.Project.Title
		if org := rec.Project.Organization.Name; org != "" {
			title = fmt.Sprintf("%s (%s)", title, org)
		}
		fmt.Fprintf(out, "%d. [%.0f] %s\n", i+1, rec.Match.MatchScore, title)
		fmt.Fprintf(out, "   %s\n", strings.TrimSpace(rec.Match.Reasoning))
	}
}

func showDetails(out io.Writer, recommendations []catalog.Recommendation) error {
	items := make([]string, 0, len(recommendations)+1)
	for _, rec := range recommendations {
		items = append(items, recommendationLabel(rec))
	}

	detailsPrompt := promptui.Select{
		Label: "Choose a project and press ENTER",
		Items: append(items, PromptBack),
	}

	_, selected, err := detailsPrompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	rec := findRecommendation(recommendations, selected)
	if rec == nil {
		return fmt.Errorf("there is no such project %s", selected)
	}

	pretty, err := json.MarshalIndent(rec.Project, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(pretty))
	return nil
}

func manualDismiss(logger *zap.Logger, excludeFile string, recommendations []catalog.Recommendation) error {
	if strings.TrimSpace(excludeFile) == "" {
		logger.Warn("cannot dismiss projects", zap.String("hint", "set catalog.exclude-file or use --exclude-file"))
		return nil
	}

	items := make([]string, 0, len(recommendations)+2)
	for _, rec := range recommendations {
		items = append(items, recommendationLabel(rec))
	}
	items = append(items, PromptDismissAll, PromptBack)

	dismissPrompt := promptui.Select{
		Label: "Choose a project to dismiss and press ENTER",
		Items: items,
	}

	_, selected, err := dismissPrompt.Run()
	if err != nil {
		return err
	}

	switch selected {
	case PromptBack:
		return nil
	case PromptDismissAll:
		projects := make([]*catalog.Project, 0, len(recommendations))
		for _, rec := range recommendations {
			projects = append(projects, rec.Project)
		}
		return dismiss(logger, excludeFile, projects...)
	default:
		rec := findRecommendation(recommendations, selected)
		if rec == nil {
			return fmt.Errorf("there is no such project %s", selected)
		}
		return dismiss(logger, excludeFile, rec.Project)
	}
}

// dismiss appends projects to the exclude file so later runs skip them.
func dismiss(logger *zap.Logger, excludeFile string, projects ...*catalog.Project) error {
	dismissed, err := catalog.LoadDismissed(excludeFile)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(projects))
	for _, project := range projects {
		dismissed.Add(project)
		ids = append(ids, project.ID)
	}

	if err := dismissed.ToFile(excludeFile); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Strings("projects", ids))
	return nil
}

func recommendationLabel(rec catalog.Recommendation) string {
	return fmt.Sprintf("%s %s / %s", rec.Project.ID, rec.Project.Title, rec.Project.Organization.Name)
}

func findRecommendation(recommendations []catalog.Recommendation, label string) *catalog.Recommendation {
	id := strings.Split(label, " ")[0]
	for i := range recommendations {
		if recommendations[i].Project.ID == id {
			return &recommendations[i]
		}
	}
	return nil
}
