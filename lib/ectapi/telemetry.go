package ectapi

import (
	"twinwatch/lib/restyutil"
	"twinwatch/lib/telemetry"
)

var tracer = telemetry.Tracer("twinwatch.lib.ectapi")
var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput must be called before NewClient for the
// output to take effect.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
