package htmx

import (
	"encoding/json"
	"net/http"
)

const (
	headerRequest    = "HX-Request"
	headerTarget     = "HX-Target"
	headerTrigger    = "HX-Trigger"
	headerPushURL    = "HX-Push-Url"
	headerRetarget   = "HX-Retarget"
	headerReswap     = "HX-Reswap"
	headerCurrentURL = "HX-Current-URL"
)

func IsHxRequest(r *http.Request) bool {
	return r.Header.Get(headerRequest) == "true"
}

// Target returns the id of the element htmx will swap into.
func Target(r *http.Request) string {
	return r.Header.Get(headerTarget)
}

func CurrentURL(r *http.Request) string {
	return r.Header.Get(headerCurrentURL)
}

func PushUrl(w http.ResponseWriter, url string) {
	w.Header().Set(headerPushURL, url)
}

func Retarget(w http.ResponseWriter, selector string) {
	w.Header().Set(headerRetarget, selector)
}

func Reswap(w http.ResponseWriter, swap string) {
	w.Header().Set(headerReswap, swap)
}

// SetTrigger fires a client event named event with detail as its payload.
func SetTrigger(w http.ResponseWriter, event string, detail any) error {
	payload, err := json.Marshal(map[string]any{event: detail})
	if err != nil {
		return err
	}
	w.Header().Set(headerTrigger, string(payload))
	return nil
}
