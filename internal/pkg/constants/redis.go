package constants

// Redis key formats
const (
	// Relay service
	KeyTripLocation = "trip:location:%d" // Format: trip:location:{trip_id}
	KeyVehicleGeo   = "vehicles:geo"     // Geo set of last known vehicle positions
)

// Redis hash fields
const (
	FieldLatitude   = "lat"
	FieldLongitude  = "lng"
	FieldGeohash    = "geohash"
	FieldSpeed      = "speed"
	FieldDriverName = "driver_name"
	FieldTimestamp  = "ts"
)
