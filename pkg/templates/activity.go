package templates

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/types"
)

// Activity descriptions shown when author code throws
const (
	ActivityLoad      = "getting metadata from template"
	ActivityExecute   = "calling executeAsync(…)"
	ActivityTransform = "calling transformContext(…)"
)

// ActivityDestination describes a getDestinationPath call for one entry
func ActivityDestination(sourcePath string) string {
	return fmt.Sprintf(`calling getDestinationPath("%s", …)`, strings.ReplaceAll(sourcePath, `"`, `\"`))
}

// ActivityRender describes rendering one file
func ActivityRender(sourcePath string) string {
	return "rendering template " + sourcePath
}

// ActivityShouldOpen describes a shouldOpenDocument call for one entry
func ActivityShouldOpen(sourcePath string) string {
	return fmt.Sprintf(`calling shouldOpenDocument("%s", …)`, strings.ReplaceAll(sourcePath, `"`, `\"`))
}

// Report hands a failure in author code to the host. location is the file
// the user should open to fix it.
func Report(host types.Host, templateName, activity, location string, err error) {
	report := types.ExceptionReport{
		TemplateName: templateName,
		Activity:     activity,
		Location:     location,
		Message:      err.Error(),
	}
	if scriptErr, ok := errors.AsScriptError(err); ok {
		report.Message = scriptErr.Message
		report.Stack = scriptErr.Stack
	}
	host.Exception(report)
}
