package native

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
	"notify_relay/internal/domain"
	"notify_relay/internal/model"
)

const (
	notificationsBus       = "org.freedesktop.Notifications"
	notificationsPath      = dbus.ObjectPath("/org/freedesktop/Notifications")
	notificationsInterface = "org.freedesktop.Notifications"

	signalActionInvoked      = notificationsInterface + ".ActionInvoked"
	signalNotificationClosed = notificationsInterface + ".NotificationClosed"
	signalNotificationReply  = notificationsInterface + ".NotificationReplied"

	actionDefault = "default"
	actionDone    = "done"
	actionReply   = "inline-reply"

	closeReasonExpired = uint32(1)
)

var errBusClosed = errors.New("dbus signal channel closed")

// busConn is the part of *dbus.Conn a notification needs.
type busConn interface {
	AddMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	Close() error
}

type dbusNotifier struct {
	connect func(ctx context.Context) (busConn, error)
	log     *zap.Logger
}

func newDBusNotifier(logger *zap.Logger) *dbusNotifier {
	return &dbusNotifier{
		connect: func(ctx context.Context) (busConn, error) {
			conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
		log: logger,
	}
}

func (d *dbusNotifier) Name() string { return BackendDBus }

// Notify opens a private session bus connection per notification so that
// concurrent notifications never share a signal channel.
func (d *dbusNotifier) Notify(ctx context.Context, opts model.Options) (Response, error) {
	conn, err := d.connect(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("%w: dbus connect: %v", domain.ErrNotifierUnavailable, err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(notificationsPath),
		dbus.WithMatchInterface(notificationsInterface),
	); err != nil {
		return Response{}, fmt.Errorf("%w: dbus add match: %v", domain.ErrNativeFailure, err)
	}
	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	obj := conn.Object(notificationsBus, notificationsPath)
	call := obj.CallWithContext(ctx, notificationsInterface+".Notify", 0,
		opts.AppName,
		uint32(0),
		"",
		opts.Title,
		opts.Message,
		notificationActions(opts),
		notificationHints(opts),
		int32(opts.Timeout.Milliseconds()),
	)
	if call.Err != nil {
		return Response{}, fmt.Errorf("%w: dbus notify: %v", domain.ErrNativeFailure, call.Err)
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return Response{}, fmt.Errorf("%w: dbus notify reply: %v", domain.ErrNativeFailure, err)
	}
	d.log.Debug("dbus notification shown", zap.Uint32("notification_id", id))

	waitCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	resp, err := awaitInteraction(waitCtx, id, signals, opts.CloseLabel)
	if err == nil {
		return resp, nil
	}

	d.closeNotification(obj, id)
	if ctx.Err() != nil {
		return Response{}, ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Response{Outcome: domain.OutcomeTimeout}, nil
	}
	return Response{}, fmt.Errorf("%w: %v", domain.ErrNativeFailure, err)
}

func (d *dbusNotifier) closeNotification(obj dbus.BusObject, id uint32) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if call := obj.CallWithContext(ctx, notificationsInterface+".CloseNotification", 0, id); call.Err != nil {
		d.log.Warn("dbus close notification failed", zap.Uint32("notification_id", id), zap.Error(call.Err))
	}
}

func notificationActions(opts model.Options) []string {
	actions := []string{actionDefault, "", actionDone, opts.CloseLabel}
	if opts.Reply {
		actions = append(actions, actionReply, "Reply")
	}
	return actions
}

func notificationHints(opts model.Options) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(1)),
	}
	if opts.Sound {
		hints["sound-name"] = dbus.MakeVariant("message-new-instant")
	} else {
		hints["suppress-sound"] = dbus.MakeVariant(true)
	}
	if opts.Wait {
		hints["resident"] = dbus.MakeVariant(true)
	}
	if opts.Reply {
		hints["x-kde-reply-placeholder-text"] = dbus.MakeVariant("Type a reply")
	}
	return hints
}

// awaitInteraction blocks until a signal for id settles the notification or
// ctx ends.
func awaitInteraction(ctx context.Context, id uint32, signals <-chan *dbus.Signal, closeLabel string) (Response, error) {
	for {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				return Response{}, errBusClosed
			}
			if resp, matched := matchSignal(sig, id, closeLabel); matched {
				return resp, nil
			}
		}
	}
}

func matchSignal(sig *dbus.Signal, id uint32, closeLabel string) (Response, bool) {
	if sig == nil || len(sig.Body) < 2 {
		return Response{}, false
	}
	if sigID, ok := sig.Body[0].(uint32); !ok || sigID != id {
		return Response{}, false
	}

	switch sig.Name {
	case signalActionInvoked:
		key, _ := sig.Body[1].(string)
		switch key {
		case actionDone:
			return Response{Outcome: domain.OutcomeAcknowledged, Value: closeLabel}, true
		case actionReply:
			// NotificationReplied carries the text.
			return Response{}, false
		default:
			return Response{Outcome: domain.OutcomeActivated}, true
		}
	case signalNotificationReply:
		text, _ := sig.Body[1].(string)
		return Response{Outcome: domain.OutcomeReplied, Value: text}, true
	case signalNotificationClosed:
		reason, _ := sig.Body[1].(uint32)
		if reason == closeReasonExpired {
			return Response{Outcome: domain.OutcomeTimeout}, true
		}
		return Response{Outcome: domain.OutcomeDismissed}, true
	}
	return Response{}, false
}
