package native

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"notify_relay/internal/domain"
	"notify_relay/internal/model"
)

type notifySendNotifier struct {
	run runFunc
}

func newNotifySendNotifier(run runFunc) *notifySendNotifier {
	return &notifySendNotifier{run: run}
}

func (n *notifySendNotifier) Name() string { return BackendNotifySend }

// Notify relies on notify-send --wait, which prints the invoked action key
// and exits once the notification is closed.
func (n *notifySendNotifier) Notify(ctx context.Context, opts model.Options) (Response, error) {
	args := []string{
		"--app-name=" + opts.AppName,
		"--expire-time=" + strconv.FormatInt(opts.Timeout.Milliseconds(), 10),
		"--action=" + actionDefault + "=Open",
		"--action=" + actionDone + "=" + opts.CloseLabel,
	}
	if opts.Wait {
		args = append(args, "--wait")
	}
	if opts.Sound {
		args = append(args, "--hint=string:sound-name:message-new-instant")
	}
	args = append(args, opts.Title, opts.Message)

	runCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	start := time.Now()
	out, err := n.run(runCtx, "notify-send", args...)
	if ctx.Err() != nil {
		return Response{}, ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Response{Outcome: domain.OutcomeTimeout}, nil
	}
	if err != nil {
		return Response{}, fmt.Errorf("%w: notify-send: %v", domain.ErrNativeFailure, err)
	}
	return parseNotifySendOutput(string(out), opts.CloseLabel, time.Since(start) >= opts.Timeout), nil
}

func parseNotifySendOutput(out, closeLabel string, expired bool) Response {
	switch strings.TrimSpace(out) {
	case actionDone:
		return Response{Outcome: domain.OutcomeAcknowledged, Value: closeLabel}
	case actionDefault:
		return Response{Outcome: domain.OutcomeActivated}
	case "":
		if expired {
			return Response{Outcome: domain.OutcomeTimeout}
		}
		return Response{Outcome: domain.OutcomeDismissed}
	default:
		return Response{Outcome: domain.OutcomeActivated}
	}
}
