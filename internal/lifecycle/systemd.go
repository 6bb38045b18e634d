package lifecycle

import (
	"github.com/coreos/go-systemd/v22/daemon"

	"rig/pkg/logging"
)

// SystemdNotifier tells systemd when the application is ready and when it
// starts stopping. Outside systemd (no NOTIFY_SOCKET) it does nothing.
type SystemdNotifier struct {
	notify func(state string) (bool, error)
}

func NewSystemdNotifier() *SystemdNotifier {
	return &SystemdNotifier{
		notify: func(state string) (bool, error) {
			return daemon.SdNotify(false, state)
		},
	}
}

func (n *SystemdNotifier) OnEvent(ev Event) error {
	var state string
	switch ev.Phase() {
	case ApplicationRunning:
		state = daemon.SdNotifyReady
	case ShutdownStarted:
		state = daemon.SdNotifyStopping
	default:
		return nil
	}

	sent, err := n.notify(state)
	if err != nil {
		// Failing to talk to systemd must not abort the application.
		logging.Warn("Lifecycle", "systemd notification %q failed: %v", state, err)
		return nil
	}
	if sent {
		logging.Debug("Lifecycle", "Notified systemd: %s", state)
	}
	return nil
}
