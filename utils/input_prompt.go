package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kaiyuhsu/cipherlift/constants/lipgloss"
)

// InputPrompt prompts the user to enter a value in a charming way
func InputPrompt(reader *bufio.Reader) (string, error) {

	// Beautifully styled prompt message
	fmt.Print(lipgloss.BlueSky.Render("> "))

	// Read user input
	userInput, err := reader.ReadString('\n')
	if userInput == "" {
		return "", nil
	}

	if err != nil {
		if err == io.EOF {
			return "", nil
		}
		return "", fmt.Errorf(lipgloss.Red.Render("🚫 Error reading input: "))
	}

	return strings.TrimSpace(userInput), nil
}

// InputPromptWithContext prompts the user with context cancellation support
func InputPromptWithContext(ctx context.Context, reader *bufio.Reader) (string, error) {
	// Create channels for input and errors
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	// Start a goroutine to read input
	go func() {
		// Beautifully styled prompt message
		fmt.Print(lipgloss.BlueSky.Render("> "))

		userInput, err := reader.ReadString('\n')

		if err != nil {
			if err == io.EOF {
				errChan <- nil
			} else {
				errChan <- fmt.Errorf(lipgloss.Red.Render("🚫 Error reading input: "))
			}
			return
		}

		if userInput == "" {
			inputChan <- ""
		} else {
			inputChan <- strings.TrimSpace(userInput)
		}
	}()

	// Wait for either input or context cancellation
	select {
	case <-ctx.Done():
		fmt.Println() // Print newline for clean exit
		return "", ctx.Err()
	case err := <-errChan:
		return "", err
	case input := <-inputChan:
		return input, nil
	}
}

// ConfirmPrompt asks a yes/no question and reports whether the user agreed.
// Anything other than y or yes counts as a no.
func ConfirmPrompt(ctx context.Context, reader *bufio.Reader, question string) (bool, error) {
	fmt.Print(lipgloss.BlueSky.Render(question + " (y/n): "))

	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		answer, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			errChan <- err
			return
		}
		inputChan <- strings.ToLower(strings.TrimSpace(answer))
	}()

	select {
	case <-ctx.Done():
		fmt.Println()
		return false, ctx.Err()
	case err := <-errChan:
		return false, err
	case answer := <-inputChan:
		return answer == "y" || answer == "yes", nil
	}
}
