package collector

import (
	"twinwatch/lib/telemetry"
)

const library_name = "twinwatch.services.collector"

var tracer = telemetry.Tracer(library_name)
