package auth

import (
	"github.com/sirupsen/logrus"
)

// logAuthAttempt records one authentication attempt. Failures are logged at warn level
// with the cause, successes at info.
func logAuthAttempt(log logrus.FieldLogger, authType, identifier string, err error) {
	if log == nil {
		return
	}
	entry := log.WithFields(logrus.Fields{
		"auth_type":  authType,
		"identifier": identifier,
	})
	if err != nil {
		entry.WithError(err).Warn("authentication failed")
		return
	}
	entry.Info("authentication succeeded")
}
