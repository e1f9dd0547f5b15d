package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"yai.app/assessment-assistant/internal/assessment"
	"yai.app/assessment-assistant/internal/telemetry"
)

var errQuizAborted = errors.New("quiz aborted before the last question")

const likertLegend = "1 = strongly disagree, 4 = neutral, 7 = strongly agree"

// runQuiz asks every question in turn, re-asking on invalid input.
// "edit N ANSWER" changes the answer to an earlier question N.
func runQuiz[Q, A, R any](w io.Writer, sc *bufio.Scanner, quiz *assessment.Quiz[Q, A, R], render func(Q) string, parse func(string) (A, error)) (R, error) {
	for {
		q, idx, ok := quiz.Current()
		if !ok {
			break
		}
		fmt.Fprintf(w, "\n%s %s\n%s\n", bold(fmt.Sprintf("Question %d of %d", idx+1, quiz.Len())), gray(fmt.Sprintf("(%.0f%%)", quiz.Progress())), render(q))

		for {
			fmt.Fprint(w, "> ")
			if !sc.Scan() {
				var zero R
				if err := sc.Err(); err != nil {
					return zero, err
				}
				return zero, errQuizAborted
			}
			line := strings.TrimSpace(sc.Text())
			if index, raw, ok := parseEdit(line); ok {
				answer, err := parse(raw)
				if err == nil {
					err = quiz.Revise(index, answer)
				}
				if err != nil {
					fmt.Fprintln(w, red(err.Error()))
				} else {
					fmt.Fprintln(w, green(fmt.Sprintf("Question %d updated.", index+1)))
				}
				continue
			}
			answer, err := parse(line)
			if err == nil {
				_, err = quiz.Answer(answer)
			}
			if err != nil {
				fmt.Fprintln(w, red(err.Error()))
				continue
			}
			break
		}
	}
	result, _ := quiz.Result()
	return result, nil
}

func parseEdit(line string) (index int, answer string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 || !strings.EqualFold(fields[0], "edit") {
		return 0, "", false
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, "", false
	}
	return n - 1, fields[2], true
}

func parseLikert(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || !assessment.ValidLikert(v) {
		return 0, fmt.Errorf("%w: enter a number from %d to %d", assessment.ErrInvalidAnswer, assessment.MinLikert, assessment.MaxLikert)
	}
	return v, nil
}

func parseChoice(s string) (assessment.Choice, error) {
	c := assessment.Choice(strings.ToUpper(s))
	if !c.Valid() {
		return "", fmt.Errorf("%w: enter A or B", assessment.ErrInvalidAnswer)
	}
	return c, nil
}

func runPersonality(w io.Writer, r io.Reader, harness *telemetry.Harness) (assessment.PersonalityResult, error) {
	quiz := assessment.NewPersonalityQuiz()
	fmt.Fprintln(w, cyan("Personality assessment: rate each statement. "+likertLegend+"."))
	fmt.Fprintln(w, gray("Type \"edit N ANSWER\" to change an earlier answer."))

	result, err := runQuiz(w, bufio.NewScanner(r), quiz,
		func(q assessment.PersonalityQuestion) string { return q.Text },
		parseLikert,
	)
	if err != nil {
		return result, err
	}

	harness.TrackEvent("assessment_completed", map[string]any{"assessment": "personality", "result": result.Type})
	fmt.Fprintf(w, "\nYour type: %s\n%s\n\n", green(bold(result.Type)), assessment.DescribeType(result.Type))
	for _, axis := range assessment.Axes {
		first, second := axis.Letters()
		fmt.Fprintf(w, "  %s %2d  |  %s %2d\n", first, result.Scores[first], second, result.Scores[second])
	}
	return result, nil
}

func runConflict(w io.Writer, r io.Reader, harness *telemetry.Harness) (assessment.ConflictResult, error) {
	quiz := assessment.NewConflictQuiz()
	fmt.Fprintln(w, cyan("Conflict style assessment: pick the statement closer to how you act (A or B)."))
	fmt.Fprintln(w, gray("Type \"edit N ANSWER\" to change an earlier answer."))

	result, err := runQuiz(w, bufio.NewScanner(r), quiz,
		func(q assessment.ConflictQuestion) string {
			return fmt.Sprintf("  A) %s\n  B) %s", q.OptionA, q.OptionB)
		},
		parseChoice,
	)
	if err != nil {
		return result, err
	}

	harness.TrackEvent("assessment_completed", map[string]any{"assessment": "conflict", "result": string(result.DominantStyle)})
	profile, _ := assessment.DescribeStyle(result.DominantStyle)
	fmt.Fprintf(w, "\nYour dominant style: %s\n%s\n", green(bold(profile.Title)), profile.Description)
	for _, c := range profile.Characteristics {
		fmt.Fprintf(w, "  - %s\n", c)
	}
	fmt.Fprintln(w)
	for _, style := range assessment.Styles {
		fmt.Fprintf(w, "  %-14s %d\n", style, result.Scores[style])
	}
	return result, nil
}

func newPersonalityCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "personality",
		Short: "Take the 12-question personality assessment",
		Args:  cobra.NoArgs,
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			_, err := runPersonality(cmd.OutOrStdout(), cmd.InOrStdin(), a.harness)
			return err
		}),
	}
}

func newConflictCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "conflict",
		Short: "Take the 12-question conflict style assessment",
		Args:  cobra.NoArgs,
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			_, err := runConflict(cmd.OutOrStdout(), cmd.InOrStdin(), a.harness)
			return err
		}),
	}
}
