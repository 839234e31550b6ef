package visits

// Metric identifies one of the monthly measure columns the metrics explorer
// can aggregate. The set is closed: ParseMetric rejects anything outside it,
// so a metric name can never reach SQL unchecked.
type Metric string

const (
	MetricRecreationVisits            Metric = "recreation_visits"
	MetricNonRecreationVisits         Metric = "non_recreation_visits"
	MetricTotalVisits                 Metric = "total_visits"
	MetricConcessionerLodging         Metric = "concessioner_lodging"
	MetricConcessionerCamping         Metric = "concessioner_camping"
	MetricTentCampers                 Metric = "tent_campers"
	MetricRVCampers                   Metric = "rv_campers"
	MetricBackcountry                 Metric = "backcountry"
	MetricNonRecreationOvernightStays Metric = "nonrecreation_overnight_stays"
	MetricMiscellaneousOvernightStays Metric = "miscellaneous_overnight_stays"
)

var metricColumns = map[Metric]string{
	MetricRecreationVisits:            "recreation_visits",
	MetricNonRecreationVisits:         "non_recreation_visits",
	MetricTotalVisits:                 "total_visits",
	MetricConcessionerLodging:         "concessioner_lodging",
	MetricConcessionerCamping:         "concessioner_camping",
	MetricTentCampers:                 "tent_campers",
	MetricRVCampers:                   "rv_campers",
	MetricBackcountry:                 "backcountry",
	MetricNonRecreationOvernightStays: "nonrecreation_overnight_stays",
	MetricMiscellaneousOvernightStays: "miscellaneous_overnight_stays",
}

// ParseMetric validates a metric name from a request.
func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if _, ok := metricColumns[m]; !ok {
		return "", invalidParam("metric", "unsupported metric: "+s)
	}
	return m, nil
}

// Column returns the monthly_visit column for the metric. Only values
// produced by ParseMetric (or the Metric constants) reach this point.
func (m Metric) Column() string {
	return metricColumns[m]
}
