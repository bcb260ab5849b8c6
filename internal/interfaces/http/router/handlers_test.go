package router

import (
	"github.com/rst/farmcontrol/internal/interfaces/http/handler"
)

// testHandlers serves the system routes only; domain handlers are exercised
// against a real store in the handler package.
func testHandlers() Handlers {
	return Handlers{System: handler.NewSystemHandler("farmcontrol", "test")}
}
