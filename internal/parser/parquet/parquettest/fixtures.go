// Package parquettest builds small Parquet objects shaped like the TLC trip
// extracts, for tests of the parser, the fetcher and the pipeline.
package parquettest

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// YellowRow follows the yellow taxi layout (tpep_* timestamps).
type YellowRow struct {
	VendorID            *int32   `parquet:"name=VendorID, type=INT32, repetitiontype=OPTIONAL"`
	PickupDatetime      *int64   `parquet:"name=tpep_pickup_datetime, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"`
	DropoffDatetime     *int64   `parquet:"name=tpep_dropoff_datetime, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"`
	PassengerCount      *int64   `parquet:"name=passenger_count, type=INT64, repetitiontype=OPTIONAL"`
	TripDistance        *float64 `parquet:"name=trip_distance, type=DOUBLE, repetitiontype=OPTIONAL"`
	PULocationID        *int32   `parquet:"name=PULocationID, type=INT32, repetitiontype=OPTIONAL"`
	DOLocationID        *int32   `parquet:"name=DOLocationID, type=INT32, repetitiontype=OPTIONAL"`
	PaymentType         *int64   `parquet:"name=payment_type, type=INT64, repetitiontype=OPTIONAL"`
	FareAmount          *float64 `parquet:"name=fare_amount, type=DOUBLE, repetitiontype=OPTIONAL"`
	TipAmount           *float64 `parquet:"name=tip_amount, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalAmount         *float64 `parquet:"name=total_amount, type=DOUBLE, repetitiontype=OPTIONAL"`
	CongestionSurcharge *float64 `parquet:"name=congestion_surcharge, type=DOUBLE, repetitiontype=OPTIONAL"`
	AirportFee          *float64 `parquet:"name=Airport_fee, type=DOUBLE, repetitiontype=OPTIONAL"`
	StoreAndFwdFlag     *string  `parquet:"name=store_and_fwd_flag, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

// GreenRow follows the green taxi layout (lpep_* timestamps).
type GreenRow struct {
	VendorID        *int32   `parquet:"name=VendorID, type=INT32, repetitiontype=OPTIONAL"`
	PickupDatetime  *int64   `parquet:"name=lpep_pickup_datetime, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"`
	DropoffDatetime *int64   `parquet:"name=lpep_dropoff_datetime, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"`
	PassengerCount  *float64 `parquet:"name=passenger_count, type=DOUBLE, repetitiontype=OPTIONAL"`
	TripDistance    *float64 `parquet:"name=trip_distance, type=DOUBLE, repetitiontype=OPTIONAL"`
	PULocationID    *int32   `parquet:"name=PULocationID, type=INT32, repetitiontype=OPTIONAL"`
	DOLocationID    *int32   `parquet:"name=DOLocationID, type=INT32, repetitiontype=OPTIONAL"`
	FareAmount      *float64 `parquet:"name=fare_amount, type=DOUBLE, repetitiontype=OPTIONAL"`
	EhailFee        *float64 `parquet:"name=ehail_fee, type=DOUBLE, repetitiontype=OPTIONAL"`
	TripType        *int64   `parquet:"name=trip_type, type=INT64, repetitiontype=OPTIONAL"`
}

// FHVRow follows the for-hire vehicle layout, which shares almost nothing
// with the taxi layouts.
type FHVRow struct {
	DispatchingBaseNum *string  `parquet:"name=dispatching_base_num, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	PickupDatetime     *int64   `parquet:"name=pickup_datetime, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"`
	DropoffDatetime    *int64   `parquet:"name=dropOff_datetime, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"`
	PUlocationID       *float64 `parquet:"name=PUlocationID, type=DOUBLE, repetitiontype=OPTIONAL"`
	DOlocationID       *float64 `parquet:"name=DOlocationID, type=DOUBLE, repetitiontype=OPTIONAL"`
	SRFlag             *int32   `parquet:"name=SR_Flag, type=INT32, repetitiontype=OPTIONAL"`
}

// UnrelatedRow has no column in common with the canonical layout.
type UnrelatedRow struct {
	Foo *string `parquet:"name=foo, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Bar *int64  `parquet:"name=bar, type=INT64, repetitiontype=OPTIONAL"`
}

// Encode writes rows as a Snappy-compressed Parquet object.
func Encode[T any](rows []T) ([]byte, error) {
	buf := &bytes.Buffer{}
	fw := writerfile.NewWriterFile(buf)
	pw, err := writer.NewParquetWriter(fw, new(T), 1)
	if err != nil {
		return nil, fmt.Errorf("parquettest: writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			_ = pw.WriteStop()
			return nil, fmt.Errorf("parquettest: write: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("parquettest: stop: %w", err)
	}
	_ = fw.Close()
	return buf.Bytes(), nil
}

// MustEncode is Encode for test setup.
func MustEncode[T any](rows []T) []byte {
	b, err := Encode(rows)
	if err != nil {
		panic(err)
	}
	return b
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Micros converts t into a TIMESTAMP_MICROS value.
func Micros(t time.Time) *int64 {
	v := t.UnixMicro()
	return &v
}

// Yellow returns n yellow rows for the given month, with distinct pickups.
func Yellow(year int, month time.Month, n int) []YellowRow {
	rows := make([]YellowRow, n)
	for i := range rows {
		pu := time.Date(year, month, 1+i%28, 8, i%60, 0, 0, time.UTC)
		rows[i] = YellowRow{
			VendorID:        Ptr(int32(1)),
			PickupDatetime:  Micros(pu),
			DropoffDatetime: Micros(pu.Add(17 * time.Minute)),
			PassengerCount:  Ptr(int64(1 + i%3)),
			TripDistance:    Ptr(2.5),
			PULocationID:    Ptr(int32(132)),
			DOLocationID:    Ptr(int32(236)),
			PaymentType:     Ptr(int64(1)),
			FareAmount:      Ptr(12.5 + float64(i)),
			TipAmount:       Ptr(2.0),
			TotalAmount:     Ptr(17.5 + float64(i)),
			AirportFee:      Ptr(0.0),
		}
	}
	return rows
}

// Green returns n green rows for the given month.
func Green(year int, month time.Month, n int) []GreenRow {
	rows := make([]GreenRow, n)
	for i := range rows {
		pu := time.Date(year, month, 1+i%28, 19, i%60, 0, 0, time.UTC)
		rows[i] = GreenRow{
			VendorID:        Ptr(int32(2)),
			PickupDatetime:  Micros(pu),
			DropoffDatetime: Micros(pu.Add(9 * time.Minute)),
			PassengerCount:  Ptr(1.0),
			TripDistance:    Ptr(1.1),
			PULocationID:    Ptr(int32(74)),
			DOLocationID:    Ptr(int32(75)),
			FareAmount:      Ptr(7.0 + float64(i)),
			TripType:        Ptr(int64(1)),
		}
	}
	return rows
}
