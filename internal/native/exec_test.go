package native

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"notify_relay/internal/domain"
)

type fakeRun struct {
	name string
	args []string
	out  string
	err  error
	wait time.Duration
}

func (f *fakeRun) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	if f.wait > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.wait):
		}
	}
	return []byte(f.out), f.err
}

func TestNotifySendNotifier(t *testing.T) {
	t.Run("acknowledged", func(t *testing.T) {
		fake := &fakeRun{out: "done\n"}
		resp, err := newNotifySendNotifier(fake.run).Notify(context.Background(), testOptions())
		require.NoError(t, err)
		require.Equal(t, Response{Outcome: domain.OutcomeAcknowledged, Value: domain.CloseLabel}, resp)

		require.Equal(t, "notify-send", fake.name)
		require.Contains(t, fake.args, "--wait")
		require.Contains(t, fake.args, "--expire-time=15000")
		require.Contains(t, fake.args, "--action=done="+domain.CloseLabel)
		require.Equal(t, []string{"Deploy", "Ship it?"}, fake.args[len(fake.args)-2:])
	})

	t.Run("timeout", func(t *testing.T) {
		opts := testOptions()
		opts.Timeout = 20 * time.Millisecond
		fake := &fakeRun{wait: time.Second}

		resp, err := newNotifySendNotifier(fake.run).Notify(context.Background(), opts)
		require.NoError(t, err)
		require.Equal(t, domain.OutcomeTimeout, resp.Outcome)
		require.Empty(t, resp.Value)
	})

	t.Run("caller cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newNotifySendNotifier((&fakeRun{wait: time.Second}).run).Notify(ctx, testOptions())
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("command failure", func(t *testing.T) {
		fake := &fakeRun{err: errors.New("no server")}
		_, err := newNotifySendNotifier(fake.run).Notify(context.Background(), testOptions())
		require.ErrorIs(t, err, domain.ErrNativeFailure)
	})
}

func TestParseNotifySendOutput(t *testing.T) {
	require.Equal(t, domain.OutcomeActivated, parseNotifySendOutput("default\n", domain.CloseLabel, false).Outcome)
	require.Equal(t, domain.OutcomeDismissed, parseNotifySendOutput("", domain.CloseLabel, false).Outcome)
	require.Equal(t, domain.OutcomeTimeout, parseNotifySendOutput("", domain.CloseLabel, true).Outcome)
}

func TestParseDialogResult(t *testing.T) {
	tests := map[string]struct {
		out      string
		expected Response
	}{
		"typed reply": {
			out:      "button returned:Reply, text returned:on it, gave up:false\n",
			expected: Response{Outcome: domain.OutcomeReplied, Value: "on it"},
		},
		"reply with commas": {
			out:      "button returned:Reply, text returned:yes, later, gave up:false",
			expected: Response{Outcome: domain.OutcomeReplied, Value: "yes, later"},
		},
		"close label": {
			out:      "button returned:Completed?, text returned:, gave up:false",
			expected: Response{Outcome: domain.OutcomeAcknowledged, Value: domain.CloseLabel},
		},
		"gave up": {
			out:      "button returned:, text returned:, gave up:true",
			expected: Response{Outcome: domain.OutcomeTimeout},
		},
		"no text field": {
			out:      "button returned:Completed?, gave up:false",
			expected: Response{Outcome: domain.OutcomeAcknowledged, Value: domain.CloseLabel},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tt.expected, parseDialogResult(tt.out, domain.CloseLabel))
		})
	}
}

func TestOsascriptNotifier(t *testing.T) {
	t.Run("script", func(t *testing.T) {
		fake := &fakeRun{out: "button returned:Reply, text returned:ok, gave up:false"}
		resp, err := newOsascriptNotifier(fake.run).Notify(context.Background(), testOptions())
		require.NoError(t, err)
		require.Equal(t, "ok", resp.Value)

		require.Equal(t, "osascript", fake.name)
		require.Equal(t, []string{"-e", "beep", "-e"}, fake.args[:3])
		script := fake.args[3]
		require.True(t, strings.HasPrefix(script, `display dialog "Ship it?" with title "Deploy" default answer ""`))
		require.Contains(t, script, "giving up after 15")
	})

	t.Run("without reply", func(t *testing.T) {
		opts := testOptions()
		opts.Reply = false
		opts.Sound = false
		args := dialogScript(opts)
		require.Len(t, args, 2)
		require.NotContains(t, args[1], "default answer")
	})

	t.Run("quotes and control characters", func(t *testing.T) {
		opts := testOptions()
		opts.Sound = false
		opts.Title = "a\\b"
		opts.Message = "say \"hi\"\nnext\x01"
		args := dialogScript(opts)
		require.Len(t, args, 2)
		require.True(t, strings.HasPrefix(args[1], "display dialog \"say \\\"hi\\\"\nnext\x01\" with title \"a\\\\b\""), args[1])
		require.NotContains(t, args[1], `\x01`)
		require.NotContains(t, args[1], `\n`)
	})

	t.Run("user canceled", func(t *testing.T) {
		fake := &fakeRun{err: &exec.ExitError{Stderr: []byte("execution error: User canceled. (-128)")}}
		resp, err := newOsascriptNotifier(fake.run).Notify(context.Background(), testOptions())
		require.NoError(t, err)
		require.Equal(t, domain.OutcomeDismissed, resp.Outcome)
	})
}

func TestPowerShellNotifier(t *testing.T) {
	tests := map[string]struct {
		out      string
		expected Response
		err      error
	}{
		"ok":      {out: "1\r\n", expected: Response{Outcome: domain.OutcomeAcknowledged, Value: domain.CloseLabel}},
		"cancel":  {out: "2", expected: Response{Outcome: domain.OutcomeDismissed}},
		"timeout": {out: "-1", expected: Response{Outcome: domain.OutcomeTimeout}},
		"garbage": {out: "nope", err: domain.ErrNativeFailure},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fake := &fakeRun{out: tt.out}
			resp, err := newPowerShellNotifier(fake.run).Notify(context.Background(), testOptions())
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, resp)
			require.Equal(t, "powershell", fake.name)
		})
	}
}

func TestPopupScript(t *testing.T) {
	opts := testOptions()
	opts.Title = "It's done"
	script := popupScript(opts)
	require.Contains(t, script, "'It''s done'")
	require.Contains(t, script, ", 15, ")
	require.True(t, strings.HasSuffix(script, ", 65)"))
}
