package shared

import "litebook/internal/domain"

// FallbackCities is the static list served when the geocoding provider is
// unreachable or the per-minute request budget is spent. Ordered roughly by
// population so prefix matches surface the big cities first.
var FallbackCities = makeFallback([]domain.CityMatch{
	{Name: "Mumbai", Region: "Maharashtra"},
	{Name: "Delhi", Region: "Delhi"},
	{Name: "Bangalore", Region: "Karnataka"},
	{Name: "Hyderabad", Region: "Telangana"},
	{Name: "Chennai", Region: "Tamil Nadu"},
	{Name: "Kolkata", Region: "West Bengal"},
	{Name: "Pune", Region: "Maharashtra"},
	{Name: "Ahmedabad", Region: "Gujarat"},
	{Name: "Jaipur", Region: "Rajasthan"},
	{Name: "Surat", Region: "Gujarat"},
	{Name: "Lucknow", Region: "Uttar Pradesh"},
	{Name: "Kanpur", Region: "Uttar Pradesh"},
	{Name: "Nagpur", Region: "Maharashtra"},
	{Name: "Indore", Region: "Madhya Pradesh"},
	{Name: "Thane", Region: "Maharashtra"},
	{Name: "Bhopal", Region: "Madhya Pradesh"},
	{Name: "Visakhapatnam", Region: "Andhra Pradesh"},
	{Name: "Pimpri-Chinchwad", Region: "Maharashtra"},
	{Name: "Patna", Region: "Bihar"},
	{Name: "Vadodara", Region: "Gujarat"},
	{Name: "Ghaziabad", Region: "Uttar Pradesh"},
	{Name: "Ludhiana", Region: "Punjab"},
	{Name: "Agra", Region: "Uttar Pradesh"},
	{Name: "Nashik", Region: "Maharashtra"},
	{Name: "Faridabad", Region: "Haryana"},
	{Name: "Meerut", Region: "Uttar Pradesh"},
	{Name: "Rajkot", Region: "Gujarat"},
	{Name: "Varanasi", Region: "Uttar Pradesh"},
	{Name: "Srinagar", Region: "Jammu and Kashmir"},
	{Name: "Aurangabad", Region: "Maharashtra"},
	{Name: "Dhanbad", Region: "Jharkhand"},
	{Name: "Amritsar", Region: "Punjab"},
	{Name: "Allahabad", Region: "Uttar Pradesh"},
	{Name: "Ranchi", Region: "Jharkhand"},
	{Name: "Howrah", Region: "West Bengal"},
	{Name: "Coimbatore", Region: "Tamil Nadu"},
	{Name: "Jabalpur", Region: "Madhya Pradesh"},
	{Name: "Gwalior", Region: "Madhya Pradesh"},
	{Name: "Vijayawada", Region: "Andhra Pradesh"},
	{Name: "Jodhpur", Region: "Rajasthan"},
	{Name: "Madurai", Region: "Tamil Nadu"},
	{Name: "Raipur", Region: "Chhattisgarh"},
	{Name: "Kota", Region: "Rajasthan"},
	{Name: "Guwahati", Region: "Assam"},
	{Name: "Chandigarh", Region: "Chandigarh"},
	{Name: "Solapur", Region: "Maharashtra"},
	{Name: "Hubballi-Dharwad", Region: "Karnataka"},
	{Name: "Mysore", Region: "Karnataka"},
	{Name: "Tiruchirappalli", Region: "Tamil Nadu"},
	{Name: "Bareilly", Region: "Uttar Pradesh"},
	{Name: "Aligarh", Region: "Uttar Pradesh"},
	{Name: "Tiruppur", Region: "Tamil Nadu"},
	{Name: "Moradabad", Region: "Uttar Pradesh"},
	{Name: "Jalandhar", Region: "Punjab"},
	{Name: "Bhubaneswar", Region: "Odisha"},
	{Name: "Salem", Region: "Tamil Nadu"},
	{Name: "Warangal", Region: "Telangana"},
	{Name: "Guntur", Region: "Andhra Pradesh"},
	{Name: "Bhiwandi", Region: "Maharashtra"},
	{Name: "Saharanpur", Region: "Uttar Pradesh"},
	{Name: "Gorakhpur", Region: "Uttar Pradesh"},
	{Name: "Bikaner", Region: "Rajasthan"},
	{Name: "Amravati", Region: "Maharashtra"},
	{Name: "Noida", Region: "Uttar Pradesh"},
	{Name: "Jamshedpur", Region: "Jharkhand"},
	{Name: "Bhilai", Region: "Chhattisgarh"},
	{Name: "Cuttack", Region: "Odisha"},
	{Name: "Firozabad", Region: "Uttar Pradesh"},
	{Name: "Kochi", Region: "Kerala"},
	{Name: "Nellore", Region: "Andhra Pradesh"},
	{Name: "Bhavnagar", Region: "Gujarat"},
	{Name: "Dehradun", Region: "Uttarakhand"},
	{Name: "Durgapur", Region: "West Bengal"},
	{Name: "Asansol", Region: "West Bengal"},
	{Name: "Rourkela", Region: "Odisha"},
	{Name: "Nanded", Region: "Maharashtra"},
	{Name: "Kolhapur", Region: "Maharashtra"},
	{Name: "Ajmer", Region: "Rajasthan"},
	{Name: "Akola", Region: "Maharashtra"},
	{Name: "Gulbarga", Region: "Karnataka"},
	{Name: "Jamnagar", Region: "Gujarat"},
	{Name: "Ujjain", Region: "Madhya Pradesh"},
	{Name: "Loni", Region: "Uttar Pradesh"},
	{Name: "Siliguri", Region: "West Bengal"},
	{Name: "Jhansi", Region: "Uttar Pradesh"},
	{Name: "Mangalore", Region: "Karnataka"},
	{Name: "Erode", Region: "Tamil Nadu"},
	{Name: "Belgaum", Region: "Karnataka"},
	{Name: "Ambattur", Region: "Tamil Nadu"},
	{Name: "Tirunelveli", Region: "Tamil Nadu"},
	{Name: "Malegaon", Region: "Maharashtra"},
	{Name: "Gaya", Region: "Bihar"},
	{Name: "Jalgaon", Region: "Maharashtra"},
	{Name: "Udaipur", Region: "Rajasthan"},
	{Name: "Maheshtala", Region: "West Bengal"},
})

func makeFallback(cities []domain.CityMatch) []domain.CityMatch {
	for i := range cities {
		cities[i].Country = "India"
		cities[i].DisplayName = cities[i].Name + ", " + cities[i].Region
	}
	return cities
}

// PopularCities returns the head of the fallback list for quick selection.
func PopularCities(n int) []domain.CityMatch {
	if n > len(FallbackCities) {
		n = len(FallbackCities)
	}
	out := make([]domain.CityMatch, n)
	copy(out, FallbackCities[:n])
	return out
}
