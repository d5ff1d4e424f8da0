package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/temirov/repofleet/internal/selection"
)

const (
	lineDelimiterConstant                = '\n'
	lineChannelCapacityConstant          = 1
	yesShortAnswerConstant               = "y"
	yesLongAnswerConstant                = "yes"
	noShortAnswerConstant                = "n"
	noLongAnswerConstant                 = "no"
	selectionOptionTemplateConstant      = "  [%d] %s\n"
	selectionPreselectedTemplateConstant = "* [%d] %s\n"
	selectionRetryTemplateConstant       = "Selection not understood: %v\n"
)

// Answer represents the outcome of a yes/no question.
type Answer int

const (
	// AnswerNone indicates the operator gave no usable answer before the deadline.
	AnswerNone Answer = iota
	// AnswerYes indicates an affirmative response.
	AnswerYes
	// AnswerNo indicates a negative response.
	AnswerNo
)

// SelectionOption describes one selectable menu entry.
type SelectionOption struct {
	Label       string
	Preselected bool
}

type lineReadResult struct {
	text      string
	readError error
	timedOut  bool
}

// ConsolePrompter asks questions on the configured writer and reads answers
// from the configured reader. At most one input read is pending at a time; a
// line that arrives after its question's deadline is discarded by the next
// question instead of answering it.
type ConsolePrompter struct {
	inputReader   io.Reader
	outputWriter  io.Writer
	bufferedInput *bufio.Reader
	lineResults   chan lineReadResult
	readPending   bool
	inputClosed   bool
}

// NewConsolePrompter constructs a prompter over the provided reader and writer.
func NewConsolePrompter(inputReader io.Reader, outputWriter io.Writer) *ConsolePrompter {
	return &ConsolePrompter{
		inputReader:   inputReader,
		outputWriter:  outputWriter,
		bufferedInput: bufio.NewReader(inputReader),
		lineResults:   make(chan lineReadResult, lineChannelCapacityConstant),
	}
}

// Ask writes the question and waits for a yes or no line. A non-positive
// deadline waits indefinitely. Timeouts, closed input, and lines that parse as
// neither yes nor no produce AnswerNone so callers apply their own default.
func (prompter *ConsolePrompter) Ask(question string, deadline time.Duration) Answer {
	prompter.discardStaleLines()
	fmt.Fprint(prompter.outputWriter, question)

	lineResult := prompter.awaitLine(deadline)
	if lineResult.timedOut || lineResult.readError != nil {
		fmt.Fprintln(prompter.outputWriter)
		return AnswerNone
	}
	return parseAnswer(lineResult.text)
}

// AskLine writes the question and returns the next trimmed input line.
func (prompter *ConsolePrompter) AskLine(question string) (string, error) {
	prompter.discardStaleLines()
	fmt.Fprint(prompter.outputWriter, question)

	lineResult := prompter.awaitLine(0)
	if lineResult.readError != nil {
		return "", lineResult.readError
	}
	return lineResult.text, nil
}

// AskSecret reads a secret without echoing when the input is a terminal,
// falling back to a plain line read for pipes and tests.
func (prompter *ConsolePrompter) AskSecret(question string) (string, error) {
	inputFile, readsFromFile := prompter.inputReader.(*os.File)
	silentReadAvailable := readsFromFile && !prompter.readPending && term.IsTerminal(int(inputFile.Fd()))
	if !silentReadAvailable {
		return prompter.AskLine(question)
	}

	fmt.Fprint(prompter.outputWriter, question)
	secretBytes, readError := term.ReadPassword(int(inputFile.Fd()))
	fmt.Fprintln(prompter.outputWriter)
	if readError != nil {
		return "", readError
	}
	return strings.TrimSpace(string(secretBytes)), nil
}

// AskSelection renders a numbered menu and resolves the operator's selection
// into labels ordered by menu position. A timeout, closed input, or blank line
// keeps the preselected options. Malformed input is reported and re-asked
// under a fresh deadline, so the menu concludes one deadline after the
// operator stops answering.
func (prompter *ConsolePrompter) AskSelection(question string, options []SelectionOption, deadline time.Duration) []string {
	prompter.discardStaleLines()
	prompter.renderOptions(options)

	for {
		fmt.Fprint(prompter.outputWriter, question)

		lineResult := prompter.awaitLine(deadline)
		if lineResult.timedOut || lineResult.readError != nil {
			fmt.Fprintln(prompter.outputWriter)
			return preselectedLabels(options)
		}
		if len(lineResult.text) == 0 {
			return preselectedLabels(options)
		}

		selectedIndexes, parseError := selection.ParseSelection(lineResult.text, len(options))
		if parseError != nil {
			fmt.Fprintf(prompter.outputWriter, selectionRetryTemplateConstant, parseError)
			continue
		}

		selectedLabels := make([]string, 0, len(selectedIndexes))
		for _, selectedIndex := range selectedIndexes {
			selectedLabels = append(selectedLabels, options[selectedIndex].Label)
		}
		return selectedLabels
	}
}

func (prompter *ConsolePrompter) renderOptions(options []SelectionOption) {
	for optionIndex, option := range options {
		optionTemplate := selectionOptionTemplateConstant
		if option.Preselected {
			optionTemplate = selectionPreselectedTemplateConstant
		}
		fmt.Fprintf(prompter.outputWriter, optionTemplate, optionIndex+1, option.Label)
	}
}

func (prompter *ConsolePrompter) beginRead() {
	if prompter.readPending || prompter.inputClosed {
		return
	}
	prompter.readPending = true

	go func() {
		lineText, readError := prompter.bufferedInput.ReadString(lineDelimiterConstant)
		trimmedLine := strings.TrimSpace(lineText)
		if readError != nil && len(trimmedLine) == 0 {
			prompter.lineResults <- lineReadResult{readError: readError}
			return
		}
		prompter.lineResults <- lineReadResult{text: trimmedLine}
	}()
}

func (prompter *ConsolePrompter) awaitLine(deadline time.Duration) lineReadResult {
	if prompter.inputClosed {
		return lineReadResult{readError: io.EOF}
	}
	prompter.beginRead()

	if deadline <= 0 {
		return prompter.consumeResult(<-prompter.lineResults)
	}

	deadlineTimer := time.NewTimer(deadline)
	defer deadlineTimer.Stop()

	select {
	case lineResult := <-prompter.lineResults:
		return prompter.consumeResult(lineResult)
	case <-deadlineTimer.C:
		return lineReadResult{timedOut: true}
	}
}

func (prompter *ConsolePrompter) consumeResult(lineResult lineReadResult) lineReadResult {
	prompter.readPending = false
	if lineResult.readError != nil {
		prompter.inputClosed = true
	}
	return lineResult
}

func (prompter *ConsolePrompter) discardStaleLines() {
	for {
		select {
		case lineResult := <-prompter.lineResults:
			prompter.consumeResult(lineResult)
		default:
			return
		}
	}
}

func parseAnswer(answerText string) Answer {
	switch strings.ToLower(strings.TrimSpace(answerText)) {
	case yesShortAnswerConstant, yesLongAnswerConstant:
		return AnswerYes
	case noShortAnswerConstant, noLongAnswerConstant:
		return AnswerNo
	default:
		return AnswerNone
	}
}

func preselectedLabels(options []SelectionOption) []string {
	selectedLabels := make([]string, 0, len(options))
	for _, option := range options {
		if option.Preselected {
			selectedLabels = append(selectedLabels, option.Label)
		}
	}
	return selectedLabels
}
