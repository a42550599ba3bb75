package api

import (
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lysyi3m/medium-wxr/app/database"
)

type Handler struct {
	posts     database.PostStore
	fetches   database.FetchStore
	feedPath  string
	sanitizer *bluemonday.Policy
	gatherer  prometheus.Gatherer
	version   string
}
