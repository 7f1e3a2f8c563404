package enums

// VehicleStatus reflects whether any unit of a vehicle is free to rent.
type VehicleStatus string

const (
	VehicleStatusAvailable VehicleStatus = "available"
	VehicleStatusRented    VehicleStatus = "rented"
)

// VehicleStatusFor derives the status from the number of free units.
func VehicleStatusFor(quantity int) VehicleStatus {
	if quantity > 0 {
		return VehicleStatusAvailable
	}
	return VehicleStatusRented
}
