package outlog

import "testing"

func TestDiscardLoggerNeverPanics(t *testing.T) {
	Discard.Debugf("no-op %d", 1)
	Discard.Infof("no-op %s", "x")
	Discard.Warnf("no-op")
}

func TestNewStdLoggerImplementsLogger(t *testing.T) {
	var l Logger = NewStdLogger()
	l.Infof("constructed ok")
}
