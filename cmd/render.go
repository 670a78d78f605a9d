package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/arcanaland/wanderwheel/internal/card"
)

const (
	defaultWidth = 80
	leftPadding  = "  "
)

// terminalWidth returns the usable text width of stdout
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = defaultWidth // Default if we can't get terminal width
	}
	return width - len(leftPadding) - 2 // Leave a small margin
}

// wrapText wraps text to a specified width
func wrapText(text string, width int) []string {
	// Ensure width is reasonable
	if width < 10 {
		width = 40
	}

	var result []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			result = append(result, "")
			continue
		}

		currentLine := words[0]
		for _, word := range words[1:] {
			if utf8.RuneCountInString(currentLine)+1+utf8.RuneCountInString(word) <= width {
				currentLine += " " + word
			} else {
				result = append(result, currentLine)
				currentLine = word
			}
		}
		result = append(result, currentLine)
	}

	return result
}

// renderCard prints a fact with its location, or a quiz with numbered options
func renderCard(w io.Writer, c card.Card, width int) {
	fmt.Fprintln(w)
	if c.IsQuiz() {
		renderQuiz(w, c, width)
	} else {
		renderFact(w, c, width)
	}
	fmt.Fprintln(w)
}

func renderFact(w io.Writer, c card.Card, width int) {
	fmt.Fprintln(w, leftPadding+c.DisplayIcon()+" "+color.HiWhiteString("%s", c.Title))

	if c.Text != "" {
		for _, line := range wrapText(c.Text, width) {
			fmt.Fprintln(w, leftPadding+line)
		}
	}

	switch c.Location.Kind {
	case card.LocationPlace:
		if c.Location.Address != "" {
			fmt.Fprintln(w, leftPadding+"📍 "+c.Location.Address)
		}
		if c.Location.GPS != nil {
			fmt.Fprintln(w, leftPadding+color.CyanString("Open on map: ")+c.Location.GPS.MapsURL())
		}
	case card.LocationLegacy:
		fmt.Fprintln(w, leftPadding+"📍 "+c.Location.Legacy)
	}
}

func renderQuiz(w io.Writer, c card.Card, width int) {
	question := c.Question
	if question == "" {
		question = "No question given."
	}

	header := c.DisplayIcon() + " " + question
	for _, line := range wrapText(header, width) {
		fmt.Fprintln(w, leftPadding+color.HiWhiteString("%s", line))
	}
	for i, opt := range c.Options {
		fmt.Fprintf(w, "%s%s %s\n", leftPadding, color.CyanString("%d)", i+1), opt)
	}
}

// renderAnswer prints the outcome of a quiz answer. Option numbers are 1-based.
func renderAnswer(w io.Writer, c card.Card, answer card.Answer, width int) {
	if answer.Correct {
		fmt.Fprintln(w, leftPadding+color.GreenString("Correct!"))
	} else {
		fmt.Fprintln(w, leftPadding+color.RedString("Wrong. Correct answer: %d", answer.CorrectIndex+1))
	}

	if c.Explanation != "" {
		for _, line := range wrapText(c.Explanation, width) {
			fmt.Fprintln(w, leftPadding+line)
		}
	}
}
