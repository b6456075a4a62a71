package export

// MIMEType is the content type of every download.
const MIMEType = "text/csv"

// Download names one of the CSV files the dashboard offers.
type Download struct {
	Key      string
	Filename string
	Label    string
}

// Downloads offered alongside the charts.
var (
	RateDownload = Download{
		Key:      "rate",
		Filename: "unsatisfied_by_n_vehicles.csv",
		Label:    "Download Data as CSV",
	}
	ChargingFrequencyDownload = Download{
		Key:      "charging-frequency",
		Filename: "unsatisfied_by_charging_frequency.csv",
		Label:    "Download Data as CSV",
	}
	ChargingDurationDownload = Download{
		Key:      "charging-duration",
		Filename: "unsatisfied_by_charging_duration.csv",
		Label:    "Download Data as CSV",
	}
)

// Downloads lists every descriptor.
var Downloads = []Download{RateDownload, ChargingFrequencyDownload, ChargingDurationDownload}

// LookupDownload finds a descriptor by file name.
func LookupDownload(filename string) (Download, bool) {
	for _, d := range Downloads {
		if d.Filename == filename {
			return d, true
		}
	}
	return Download{}, false
}

// DownloadForKey finds a descriptor by chart key.
func DownloadForKey(key string) (Download, bool) {
	for _, d := range Downloads {
		if d.Key == key {
			return d, true
		}
	}
	return Download{}, false
}
