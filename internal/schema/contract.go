// Package schema declares the canonical output contract of the trips
// ingestion table. Every table leaving the reconciler has exactly these
// columns, in this order, whichever taxi type produced it.
package schema

// Logical column types. Storage backends map them to dialect types.
const (
	TypeString    = "string"
	TypeInteger   = "integer"
	TypeDouble    = "double"
	TypeTimestamp = "timestamp"
)

// Field describes one canonical column.
type Field struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// PrimaryKey marks the advisory dedup key. It is metadata for the
	// destination; rows with equal keys are expected and not rejected here.
	PrimaryKey bool `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
}

// Contract is an ordered, named list of fields.
type Contract struct {
	Name   string  `json:"name" yaml:"name"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Column names used by the pipeline itself.
const (
	ColTripHash        = "trip_hash"
	ColTaxiType        = "taxi_type"
	ColPickupDatetime  = "pickup_datetime"
	ColDropoffDatetime = "dropoff_datetime"
	ColPassengerCount  = "passenger_count"
	ColFareAmount      = "fare_amount"
	ColExtractedAt     = "extracted_at"
)

// Trips is the canonical raw trips table (extended layout: distance,
// location ids and the full fare breakdown).
var Trips = Contract{
	Name: "ingestion.trips",
	Fields: []Field{
		{Name: ColTripHash, Type: TypeString, Description: "surrogate hash for deduplication", PrimaryKey: true},
		{Name: ColTaxiType, Type: TypeString, Description: "taxi color/type"},
		{Name: ColPickupDatetime, Type: TypeTimestamp, Description: "pickup timestamp from source"},
		{Name: ColDropoffDatetime, Type: TypeTimestamp, Description: "dropoff timestamp from source"},
		{Name: ColPassengerCount, Type: TypeInteger, Description: "passenger count"},
		{Name: "trip_distance", Type: TypeDouble, Description: "trip distance in miles"},
		{Name: "pickup_location_id", Type: TypeInteger, Description: "TLC taxi zone of the pickup"},
		{Name: "dropoff_location_id", Type: TypeInteger, Description: "TLC taxi zone of the dropoff"},
		{Name: "payment_type", Type: TypeInteger, Description: "numeric payment code from source"},
		{Name: ColFareAmount, Type: TypeDouble, Description: "fare amount from source"},
		{Name: "extra", Type: TypeDouble},
		{Name: "mta_tax", Type: TypeDouble},
		{Name: "tip_amount", Type: TypeDouble},
		{Name: "tolls_amount", Type: TypeDouble},
		{Name: "improvement_surcharge", Type: TypeDouble},
		{Name: "congestion_surcharge", Type: TypeDouble},
		{Name: "airport_fee", Type: TypeDouble},
		{Name: "total_amount", Type: TypeDouble},
		{Name: ColExtractedAt, Type: TypeTimestamp, Description: "extraction timestamp"},
	},
}

// KeyColumns are the canonical columns the surrogate key is derived from,
// in key order.
var KeyColumns = []string{
	ColPickupDatetime,
	ColDropoffDatetime,
	ColPassengerCount,
	ColFareAmount,
	ColTaxiType,
}

// Names returns the field names in declared order.
func (c Contract) Names() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Name
	}
	return out
}

// Types returns a name -> logical type map.
func (c Contract) Types() map[string]string {
	out := make(map[string]string, len(c.Fields))
	for _, f := range c.Fields {
		out[f.Name] = f.Type
	}
	return out
}
