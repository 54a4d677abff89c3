package anomaly

import (
	"twinwatch/lib/telemetry"
)

const library_name = "twinwatch.services.anomaly"

var tracer = telemetry.Tracer(library_name)
