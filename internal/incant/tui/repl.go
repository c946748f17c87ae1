package tui

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/lexcodex/incant/execute"
	"github.com/lexcodex/incant/extract"
	runtimesvc "github.com/lexcodex/incant/internal/incant/runtime"
	"github.com/lexcodex/incant/session"
)

// RunPlain drives the controller over plain stdin/stdout. It covers pipes,
// dumb terminals, and anything else the full-screen console cannot run on.
func RunPlain(ctx context.Context, rt *runtimesvc.Runtime) error {
	for _, line := range rt.Banner() {
		fmt.Println(line)
	}
	fmt.Println("Describe a task and the configured model drafts the code for it. /help lists commands.")

	go func() {
		for event := range rt.Events {
			if line := describePlainEvent(event); line != "" {
				fmt.Println(line)
			}
		}
	}()

	controller := rt.Controller
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		turn, err := controller.Submit(ctx, scanner.Text())
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		if turn != nil && turn.NeedsEdit && turn.Artifact != nil {
			if turn, err = applyEditorEdit(ctx, controller, *turn.Artifact); err != nil {
				fmt.Println("error:", err)
				continue
			}
		}
		if printTurn(rt, turn) {
			return nil
		}
		if err := confirmLoop(ctx, rt, scanner); err != nil {
			return err
		}
	}
}

// confirmLoop prompts while an artifact awaits confirmation. Editing keeps
// the machine in the same state, so the prompt repeats with the new version.
func confirmLoop(ctx context.Context, rt *runtimesvc.Runtime, scanner *bufio.Scanner) error {
	controller := rt.Controller
	for controller.State() == session.StateAwaitingConfirmation {
		artifact, ok := rt.Session.Artifact()
		if !ok {
			return nil
		}
		fmt.Print("run this code? [y/e/N] ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			turn, err := controller.Confirm(ctx)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			printTurn(rt, turn)
		case "e", "edit":
			turn, err := applyEditorEdit(ctx, controller, artifact)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			printTurn(rt, turn)
		default:
			turn := controller.Discard()
			fmt.Println(turn.Message)
		}
	}
	return nil
}

// printTurn renders one turn to stdout and reports whether the loop should
// exit.
func printTurn(rt *runtimesvc.Runtime, turn *session.Turn) bool {
	if turn == nil {
		return false
	}
	if turn.Exit {
		return true
	}
	if turn.ClearScreen {
		fmt.Print("\033[H\033[2J")
	}
	if turn.Message != "" {
		fmt.Println(turn.Message)
	}
	if turn.Artifact != nil && rt.Config.DisplayCode &&
		(rt.Controller.State() == session.StateAwaitingConfirmation || turn.Result != nil) {
		fmt.Printf("--- %s v%d ---\n%s\n---\n", turn.Artifact.Language, turn.Artifact.Version, turn.Artifact.Body)
	}
	if turn.Result != nil {
		if turn.ExecErr != nil {
			fmt.Printf("exit %d: %v\n", turn.Result.ExitCode, turn.ExecErr)
		} else {
			fmt.Printf("exit %d\n", turn.Result.ExitCode)
		}
		if out := strings.TrimRight(turn.Result.Stdout, "\n"); out != "" {
			fmt.Println(out)
		}
		if errOut := strings.TrimRight(turn.Result.Stderr, "\n"); errOut != "" && turn.ExecErr != nil {
			fmt.Println(errOut)
		}
	}
	return false
}

func describePlainEvent(event session.Event) string {
	switch event.Type {
	case session.EventInstallStart:
		return "installing " + event.Message
	case session.EventInstallDone:
		return "installed " + event.Message
	case session.EventNotice:
		return "warning: " + event.Message
	default:
		return ""
	}
}

// applyEditorEdit round-trips the artifact body through $EDITOR and applies
// the result as a new version.
func applyEditorEdit(ctx context.Context, controller *session.Controller, artifact extract.Artifact) (*session.Turn, error) {
	body, err := editInEditor(ctx, artifact.Body, artifact.Language)
	if err != nil {
		return nil, err
	}
	return controller.ApplyEdit(ctx, body)
}

func editInEditor(ctx context.Context, body, language string) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		if runtime.GOOS == "windows" {
			editor = "notepad"
		} else {
			editor = "vi"
		}
	}
	file, err := os.CreateTemp("", "incant-edit-*."+execute.FileExtension(language))
	if err != nil {
		return "", err
	}
	path := file.Name()
	defer os.Remove(path)
	if _, err := file.WriteString(body); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}

	fields := strings.Fields(editor)
	cmd := exec.CommandContext(ctx, fields[0], append(fields[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor %s: %w", fields[0], err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
