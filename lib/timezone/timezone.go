package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Bangkok")
	if err != nil {
		panic(err)
	}
}

// the election data is published in ICT, so timestamps in reports and
// manifests are forced there regardless of where the process runs
func Now() time.Time {
	return time.Now().In(Location)
}
