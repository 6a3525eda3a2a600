package users

import "go.uber.org/zap"

type logEvents struct {
	logger *zap.Logger
}

//NewLogEvents returns Events that write one audit line per account change.
func NewLogEvents(logger *zap.Logger) Events {
	return &logEvents{logger: logger.Named("events")}
}

func (e *logEvents) AccountCreated(id string, email string) {
	e.logger.Info("account created", zap.String("id", id), zap.String("email", email))
}

func (e *logEvents) AccountUpdated(id string) {
	e.logger.Info("account updated", zap.String("id", id))
}

func (e *logEvents) AccountDeleted(id string) {
	e.logger.Info("account deleted", zap.String("id", id))
}
