package native

import (
	"context"
	"fmt"
	"strings"

	"notify_relay/internal/domain"
	"notify_relay/internal/model"
)

// WScript.Shell Popup return codes.
const (
	popupOK       = "1"
	popupCancel   = "2"
	popupTimedOut = "-1"

	popupOKCancel = 1
	popupIconInfo = 64
)

type powerShellNotifier struct {
	run runFunc
}

func newPowerShellNotifier(run runFunc) *powerShellNotifier {
	return &powerShellNotifier{run: run}
}

func (n *powerShellNotifier) Name() string { return BackendPowerShell }

// Notify shows a Popup dialog. Popup has no text input, so a reply is
// reported as the acknowledgement label.
func (n *powerShellNotifier) Notify(ctx context.Context, opts model.Options) (Response, error) {
	out, err := n.run(ctx, "powershell", "-ExecutionPolicy", "Bypass", "-NoProfile", "-Command", popupScript(opts))
	if ctx.Err() != nil {
		return Response{}, ctx.Err()
	}
	if err != nil {
		return Response{}, fmt.Errorf("%w: powershell: %v", domain.ErrNativeFailure, err)
	}
	return parsePopupResult(string(out), opts.CloseLabel)
}

func popupScript(opts model.Options) string {
	kind := popupOKCancel
	if opts.Sound {
		kind |= popupIconInfo
	}
	return fmt.Sprintf(
		"$shell = New-Object -ComObject WScript.Shell\n$shell.Popup('%s', %d, '%s', %d)",
		escapeForPowerShell(opts.Message),
		int(opts.Timeout.Seconds()),
		escapeForPowerShell(opts.Title),
		kind,
	)
}

func parsePopupResult(out, closeLabel string) (Response, error) {
	switch strings.TrimSpace(out) {
	case popupOK:
		return Response{Outcome: domain.OutcomeAcknowledged, Value: closeLabel}, nil
	case popupCancel:
		return Response{Outcome: domain.OutcomeDismissed}, nil
	case popupTimedOut:
		return Response{Outcome: domain.OutcomeTimeout}, nil
	default:
		return Response{}, fmt.Errorf("%w: unexpected popup result %q", domain.ErrNativeFailure, strings.TrimSpace(out))
	}
}

// escapeForPowerShell escapes s for a single-quoted PowerShell string, where
// only the quote itself is special.
func escapeForPowerShell(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
