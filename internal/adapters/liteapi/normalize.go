package liteapi

import (
	"strconv"
	"strings"

	"litebook/internal/domain"
)

/********** alias registry (single source of truth) **********/

// The provider is inconsistent about field naming across endpoints and
// versions; every accepted spelling lives here and nowhere else. Nothing
// ambiguous leaks past this file.
var bookingAliases = map[string][]string{
	"booking_id":    {"bookingId", "booking_id", "id"},
	"status":        {"status"},
	"confirmation":  {"confirmationNumber", "confirmation_number", "bookingReference"},
	"hotel_id":      {"hotelId", "hotel.hotelId", "hotel.id"},
	"hotel_name":    {"hotel.name", "hotelName"},
	"hotel_address": {"hotel.address"},
	"hotel_city":    {"hotel.city"},
	"hotel_country": {"hotel.country"},
	"hotel_phone":   {"hotel.telephone", "hotel.phone"},
	"room":          {"roomType", "roomName", "room.name"},
	"board":         {"boardType", "boardName"},
	"currency":      {"currency"},
	"checkin":       {"checkin", "checkIn"},
	"checkout":      {"checkout", "checkOut"},
	"checkin_time":  {"checkInTime"},
	"checkout_time": {"checkOutTime"},
	"transaction":   {"transactionId", "transaction_id"},
	"created":       {"createdAt", "created_at"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string at path or "". Numeric identifiers are
// stringified rather than dropped.
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// firstAlias: first non-empty string for a named alias set.
func firstAlias(m map[string]any, key string) string {
	for _, p := range bookingAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string "8,0").
func getFloatFlexible(m map[string]any, paths ...string) float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func getIntFlexible(m map[string]any, paths ...string) int {
	return int(getFloatFlexible(m, paths...))
}

/********** booking mapper **********/

// normalizeBooking collapses the provider's duck-typed booking payload into
// the canonical form. Absent fields stay zero; the merge layer treats zero
// as "provider did not say".
func normalizeBooking(m map[string]any) domain.ProviderBooking {
	pb := domain.ProviderBooking{
		BookingID:          firstAlias(m, "booking_id"),
		Status:             firstAlias(m, "status"),
		ConfirmationNumber: firstAlias(m, "confirmation"),
		HotelID:            firstAlias(m, "hotel_id"),
		HotelName:          firstAlias(m, "hotel_name"),
		HotelAddress:       firstAlias(m, "hotel_address"),
		HotelCity:          firstAlias(m, "hotel_city"),
		HotelCountry:       firstAlias(m, "hotel_country"),
		HotelPhone:         firstAlias(m, "hotel_phone"),
		RoomName:           firstAlias(m, "room"),
		BoardName:          firstAlias(m, "board"),
		Currency:           firstAlias(m, "currency"),
		CheckIn:            firstAlias(m, "checkin"),
		CheckOut:           firstAlias(m, "checkout"),
		CheckInTime:        firstAlias(m, "checkin_time"),
		CheckOutTime:       firstAlias(m, "checkout_time"),
		TransactionID:      firstAlias(m, "transaction"),
		CreatedAt:          firstAlias(m, "created"),
		Price:              getFloatFlexible(m, "price", "totalAmount", "total"),
		AdultCount:         getIntFlexible(m, "adults", "adultCount"),
		ChildCount:         getIntFlexible(m, "children", "childCount"),
		Raw:                m,
	}

	if h, ok := lookupAny(m, "holder").(map[string]any); ok {
		pb.Holder = &domain.Holder{
			FirstName: lookupStr(h, "firstName"),
			LastName:  lookupStr(h, "lastName"),
			Email:     lookupStr(h, "email"),
		}
	}
	if gs, ok := lookupAny(m, "guests").([]any); ok {
		for _, g := range gs {
			gm, ok := g.(map[string]any)
			if !ok {
				continue
			}
			pb.Guests = append(pb.Guests, domain.Guest{
				OccupancyNumber: getIntFlexible(gm, "occupancyNumber"),
				FirstName:       lookupStr(gm, "firstName"),
				LastName:        lookupStr(gm, "lastName"),
				Email:           lookupStr(gm, "email"),
				Remarks:         lookupStr(gm, "remarks"),
			})
		}
	}
	return pb
}
