package partycolors

import (
	"twinwatch/lib/telemetry"
)

const library_name = "twinwatch.services.partycolors"

var tracer = telemetry.Tracer(library_name)
