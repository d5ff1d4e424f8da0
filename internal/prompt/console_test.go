package prompt_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repofleet/internal/prompt"
)

const (
	testQuestionConstant         = "Proceed? [y/n]: "
	testSelectionQuestionConstant = "Select projects: "
	testGenerousDeadlineConstant = 5 * time.Second
	testShortDeadlineConstant    = 50 * time.Millisecond
	testTimeoutBoundConstant     = 2 * time.Second
	testStaleDeliveryPauseConstant = 100 * time.Millisecond
)

func newSelectionOptions() []prompt.SelectionOption {
	return []prompt.SelectionOption{
		{Label: "alpha"},
		{Label: "beta", Preselected: true},
		{Label: "gamma"},
		{Label: "delta"},
	}
}

func TestAskParsesAnswers(testInstance *testing.T) {
	testCases := []struct {
		name           string
		inputText      string
		expectedAnswer prompt.Answer
	}{
		{name: "short_yes", inputText: "y\n", expectedAnswer: prompt.AnswerYes},
		{name: "long_yes_uppercase", inputText: "YES\n", expectedAnswer: prompt.AnswerYes},
		{name: "short_no", inputText: "n\n", expectedAnswer: prompt.AnswerNo},
		{name: "long_no_mixed_case", inputText: "No\n", expectedAnswer: prompt.AnswerNo},
		{name: "unparseable_line", inputText: "maybe\n", expectedAnswer: prompt.AnswerNone},
		{name: "blank_line", inputText: "\n", expectedAnswer: prompt.AnswerNone},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			var outputBuffer bytes.Buffer
			prompter := prompt.NewConsolePrompter(strings.NewReader(testCase.inputText), &outputBuffer)

			answer := prompter.Ask(testQuestionConstant, testGenerousDeadlineConstant)

			require.Equal(testInstance, testCase.expectedAnswer, answer)
			require.Contains(testInstance, outputBuffer.String(), testQuestionConstant)
		})
	}
}

func TestAskReturnsNoAnswerAtDeadline(testInstance *testing.T) {
	pipeReader, pipeWriter := io.Pipe()
	defer pipeWriter.Close()

	var outputBuffer bytes.Buffer
	prompter := prompt.NewConsolePrompter(pipeReader, &outputBuffer)

	askStart := time.Now()
	answer := prompter.Ask(testQuestionConstant, testShortDeadlineConstant)
	askDuration := time.Since(askStart)

	require.Equal(testInstance, prompt.AnswerNone, answer)
	require.Less(testInstance, askDuration, testTimeoutBoundConstant)
}

func TestAskReturnsNoAnswerOnClosedInput(testInstance *testing.T) {
	var outputBuffer bytes.Buffer
	prompter := prompt.NewConsolePrompter(strings.NewReader(""), &outputBuffer)

	require.Equal(testInstance, prompt.AnswerNone, prompter.Ask(testQuestionConstant, testGenerousDeadlineConstant))
	require.Equal(testInstance, prompt.AnswerNone, prompter.Ask(testQuestionConstant, testGenerousDeadlineConstant))
}

func TestAskDiscardsLineFromAbandonedQuestion(testInstance *testing.T) {
	pipeReader, pipeWriter := io.Pipe()
	defer pipeWriter.Close()

	var outputBuffer bytes.Buffer
	prompter := prompt.NewConsolePrompter(pipeReader, &outputBuffer)

	firstAnswer := prompter.Ask(testQuestionConstant, testShortDeadlineConstant)
	require.Equal(testInstance, prompt.AnswerNone, firstAnswer)

	_, staleWriteError := io.WriteString(pipeWriter, "yes\n")
	require.NoError(testInstance, staleWriteError)
	time.Sleep(testStaleDeliveryPauseConstant)

	go func() {
		time.Sleep(testStaleDeliveryPauseConstant)
		_, _ = io.WriteString(pipeWriter, "no\n")
	}()

	secondAnswer := prompter.Ask(testQuestionConstant, testGenerousDeadlineConstant)
	require.Equal(testInstance, prompt.AnswerNo, secondAnswer)
}

func TestAskLineReturnsTrimmedText(testInstance *testing.T) {
	var outputBuffer bytes.Buffer
	prompter := prompt.NewConsolePrompter(strings.NewReader(" spaced value \n"), &outputBuffer)

	lineText, lineError := prompter.AskLine(testQuestionConstant)
	require.NoError(testInstance, lineError)
	require.Equal(testInstance, "spaced value", lineText)

	_, closedError := prompter.AskLine(testQuestionConstant)
	require.ErrorIs(testInstance, closedError, io.EOF)
}

func TestAskSecretFallsBackToLineReadOffTerminal(testInstance *testing.T) {
	var outputBuffer bytes.Buffer
	prompter := prompt.NewConsolePrompter(strings.NewReader("hunter2\n"), &outputBuffer)

	secretValue, secretError := prompter.AskSecret(testQuestionConstant)
	require.NoError(testInstance, secretError)
	require.Equal(testInstance, "hunter2", secretValue)
}

func TestAskSelectionResolvesChosenLabels(testInstance *testing.T) {
	var outputBuffer bytes.Buffer
	prompter := prompt.NewConsolePrompter(strings.NewReader("2,4\n"), &outputBuffer)

	selectedLabels := prompter.AskSelection(testSelectionQuestionConstant, newSelectionOptions(), testGenerousDeadlineConstant)

	require.Equal(testInstance, []string{"beta", "delta"}, selectedLabels)
	require.Contains(testInstance, outputBuffer.String(), "* [2] beta")
	require.Contains(testInstance, outputBuffer.String(), "  [1] alpha")
}

func TestAskSelectionKeepsPreselectionOnBlankLine(testInstance *testing.T) {
	var outputBuffer bytes.Buffer
	prompter := prompt.NewConsolePrompter(strings.NewReader("\n"), &outputBuffer)

	selectedLabels := prompter.AskSelection(testSelectionQuestionConstant, newSelectionOptions(), testGenerousDeadlineConstant)

	require.Equal(testInstance, []string{"beta"}, selectedLabels)
}

func TestAskSelectionKeepsPreselectionAtDeadline(testInstance *testing.T) {
	pipeReader, pipeWriter := io.Pipe()
	defer pipeWriter.Close()

	var outputBuffer bytes.Buffer
	prompter := prompt.NewConsolePrompter(pipeReader, &outputBuffer)

	selectedLabels := prompter.AskSelection(testSelectionQuestionConstant, newSelectionOptions(), testShortDeadlineConstant)

	require.Equal(testInstance, []string{"beta"}, selectedLabels)
}

func TestAskSelectionRetriesAfterMalformedInput(testInstance *testing.T) {
	var outputBuffer bytes.Buffer
	prompter := prompt.NewConsolePrompter(strings.NewReader("x\n1,3\n"), &outputBuffer)

	selectedLabels := prompter.AskSelection(testSelectionQuestionConstant, newSelectionOptions(), testGenerousDeadlineConstant)

	require.Equal(testInstance, []string{"alpha", "gamma"}, selectedLabels)
	require.Contains(testInstance, outputBuffer.String(), "Selection not understood")
}

func TestAskSelectionRetriesAfterOutOfRangeInput(testInstance *testing.T) {
	var outputBuffer bytes.Buffer
	prompter := prompt.NewConsolePrompter(strings.NewReader("9\n2\n"), &outputBuffer)

	selectedLabels := prompter.AskSelection(testSelectionQuestionConstant, newSelectionOptions(), testGenerousDeadlineConstant)

	require.Equal(testInstance, []string{"beta"}, selectedLabels)
}
