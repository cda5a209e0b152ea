// logger.go records AI request/response events through the shared
// application log. Prompts can contain schema details, so only sizes
// and outcomes are logged, never full payloads.
package ai

import (
	"encoding/json"

	"github.com/DachengChen/pgstudio/applog"
)

func logRequest(client string, prompt string) {
	applog.Event("ai.request", "client=%s prompt_len=%d", client, len(prompt))
}

func logResponse(client string, raw json.RawMessage, err error) {
	if err != nil {
		applog.Event("ai.response", "client=%s error=%v", client, err)
		return
	}
	applog.Event("ai.response", "client=%s response_len=%d", client, len(raw))
}
