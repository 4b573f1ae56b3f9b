package util

import "time"

var kstLocation *time.Location

func init() {
	var err error
	kstLocation, err = time.LoadLocation("Asia/Seoul")
	if err != nil {
		kstLocation = time.FixedZone("KST", 9*60*60)
	}
}

// FormatKST renders t in Korea Standard Time.
func FormatKST(t time.Time, layout string) string {
	return t.In(kstLocation).Format(layout)
}
