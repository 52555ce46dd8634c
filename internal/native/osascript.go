package native

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"notify_relay/internal/domain"
	"notify_relay/internal/model"
)

const (
	replyButton = "Reply"

	dialogButtonKey = "button returned:"
	dialogTextKey   = ", text returned:"
	dialogGaveUpKey = ", gave up:"

	userCanceled = "-128"
)

type osascriptNotifier struct {
	run runFunc
}

func newOsascriptNotifier(run runFunc) *osascriptNotifier {
	return &osascriptNotifier{run: run}
}

func (n *osascriptNotifier) Name() string { return BackendOsascript }

func (n *osascriptNotifier) Notify(ctx context.Context, opts model.Options) (Response, error) {
	// giving up after expires the dialog itself; the grace on ctx only
	// covers a stuck osascript process.
	out, err := n.run(ctx, "osascript", dialogScript(opts)...)
	if ctx.Err() != nil {
		return Response{}, ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && bytes.Contains(exitErr.Stderr, []byte(userCanceled)) {
			return Response{Outcome: domain.OutcomeDismissed}, nil
		}
		return Response{}, fmt.Errorf("%w: osascript: %v", domain.ErrNativeFailure, err)
	}
	return parseDialogResult(string(out), opts.CloseLabel), nil
}

func dialogScript(opts model.Options) []string {
	var lines []string
	if opts.Sound {
		lines = append(lines, "beep")
	}
	seconds := int(opts.Timeout.Seconds())
	if opts.Reply {
		lines = append(lines, fmt.Sprintf(
			`display dialog %s with title %s default answer "" buttons {%s, %s} default button %s giving up after %d`,
			appleScriptString(opts.Message), appleScriptString(opts.Title),
			appleScriptString(opts.CloseLabel), appleScriptString(replyButton), appleScriptString(replyButton), seconds,
		))
	} else {
		lines = append(lines, fmt.Sprintf(
			`display dialog %s with title %s buttons {%s} default button %s giving up after %d`,
			appleScriptString(opts.Message), appleScriptString(opts.Title),
			appleScriptString(opts.CloseLabel), appleScriptString(opts.CloseLabel), seconds,
		))
	}

	args := make([]string, 0, len(lines)*2)
	for _, line := range lines {
		args = append(args, "-e", line)
	}
	return args
}

// appleScriptString quotes s as an AppleScript literal. Only backslash and
// double quote need escaping; other characters are taken verbatim.
func appleScriptString(s string) string {
	return `"` + appleScriptEscaper.Replace(s) + `"`
}

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// parseDialogResult reads the record osascript prints for display dialog,
// e.g. "button returned:Reply, text returned:on it, gave up:false".
func parseDialogResult(out, closeLabel string) Response {
	rest := strings.TrimPrefix(strings.TrimSpace(out), dialogButtonKey)

	gaveUp := false
	if i := strings.LastIndex(rest, dialogGaveUpKey); i >= 0 {
		gaveUp = rest[i+len(dialogGaveUpKey):] == "true"
		rest = rest[:i]
	}
	if gaveUp {
		return Response{Outcome: domain.OutcomeTimeout}
	}

	button, text := rest, ""
	if i := strings.Index(rest, dialogTextKey); i >= 0 {
		button, text = rest[:i], rest[i+len(dialogTextKey):]
	}
	if button == closeLabel {
		return Response{Outcome: domain.OutcomeAcknowledged, Value: closeLabel}
	}
	return Response{Outcome: domain.OutcomeReplied, Value: text}
}
