package workspace

import (
	"fmt"

	"bennypowers.dev/excss/internal/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// LogError logs an error and forwards it to the client's log, if connected
func LogError(context *glsp.Context, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	log.Error("%s", message)
	logMessage(context, protocol.MessageTypeError, message)
}

// LogWarning logs a warning and forwards it to the client's log, if connected
func LogWarning(context *glsp.Context, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	log.Warn("%s", message)
	logMessage(context, protocol.MessageTypeWarning, message)
}

// ShowMessage asks the client to display a message
func ShowMessage(context *glsp.Context, messageType protocol.MessageType, message string) {
	if context == nil || context.Notify == nil {
		return
	}
	go context.Notify(protocol.ServerWindowShowMessage, &protocol.ShowMessageParams{
		Type:    messageType,
		Message: message,
	})
}

func logMessage(context *glsp.Context, messageType protocol.MessageType, message string) {
	if context == nil || context.Notify == nil {
		return
	}
	go context.Notify(protocol.ServerWindowLogMessage, &protocol.LogMessageParams{
		Type:    messageType,
		Message: message,
	})
}
