package drda

import "github.com/sirupsen/logrus"

// _lg is the package-level logger every Session logs through,
// overridable via SetLogger.
var _lg = logrus.New()

// SetLogger replaces the package-level logger.
func SetLogger(lg *logrus.Logger) {
	_lg = lg
}
