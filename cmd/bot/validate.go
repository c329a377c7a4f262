package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aliskhannn/pmp-prep-bot/internal/config"
	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
	"github.com/aliskhannn/pmp-prep-bot/internal/service"
)

var errBankInvalid = errors.New("bank validation failed")

func newValidateCmd() *cobra.Command {
	var (
		questionsPath  string
		flashcardsPath string
		strict         bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the question and flashcard banks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if questionsPath == "" || flashcardsPath == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				if questionsPath == "" {
					questionsPath = cfg.QuestionsPath
				}
				if flashcardsPath == "" {
					flashcardsPath = cfg.FlashcardsPath
				}
			}

			out := cmd.OutOrStdout()
			bad, warned, err := validateQuestions(out, questionsPath)
			if err != nil {
				return err
			}
			badCards, warnedCards, err := validateFlashcards(out, flashcardsPath)
			if err != nil {
				return err
			}

			if bad+badCards > 0 || (strict && warned+warnedCards > 0) {
				return errBankInvalid
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&questionsPath, "questions", "", "question bank file (defaults to config)")
	cmd.Flags().StringVar(&flashcardsPath, "flashcards", "", "flashcard bank file (defaults to config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

func validateQuestions(w io.Writer, path string) (int, int, error) {
	questions, err := repository.ReadQuestions(path)
	if err != nil {
		return 0, 0, fmt.Errorf("read questions: %w", err)
	}

	issues := repository.CheckQuestions(questions)
	warnings := repository.LintQuestions(questions)

	fmt.Fprintf(w, "questions: %s\n", path)
	fmt.Fprintf(w, "  loaded %d, rejected %d, warnings %d\n", len(questions), len(issues), len(warnings))
	for _, issue := range issues {
		fmt.Fprintf(w, "  error   %v\n", issue)
	}
	for _, warn := range warnings {
		fmt.Fprintf(w, "  warning %s\n", warn)
	}

	bank, _ := repository.NewQuestionBank(questions)
	counts := bank.CountByDomain()
	fmt.Fprintln(w, "  exam coverage:")
	for _, target := range service.DefaultDistribution {
		have := counts[target.Domain]
		mark := "ok"
		if have < target.Count {
			mark = "short"
		}
		fmt.Fprintf(w, "    %-9s %4d / %-3d %s\n", target.Domain, have, target.Count, mark)
	}

	return len(issues), len(warnings), nil
}

func validateFlashcards(w io.Writer, path string) (int, int, error) {
	cards, err := repository.ReadFlashcards(path)
	if err != nil {
		return 0, 0, fmt.Errorf("read flashcards: %w", err)
	}

	_, issues := repository.NewFlashcardBank(cards)
	warnings := repository.LintFlashcards(cards)

	fmt.Fprintf(w, "flashcards: %s\n", path)
	fmt.Fprintf(w, "  loaded %d, rejected %d, warnings %d\n", len(cards), len(issues), len(warnings))
	for _, issue := range issues {
		fmt.Fprintf(w, "  error   %v\n", issue)
	}
	for _, warn := range warnings {
		fmt.Fprintf(w, "  warning %s\n", warn)
	}

	return len(issues), len(warnings), nil
}
