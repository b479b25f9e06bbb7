package catalog

import "time"

// ExpiringSoonWindow is how far ahead of expiry a product reports Expiring Soon.
const ExpiringSoonWindow = 48 * time.Hour

// DeriveStatus maps quantity, minimum-stock threshold and expiry date to the
// product lifecycle status. The branches are ordered: stock levels are checked
// before expiry, so a low-stock product that is also expired reports Low Stock.
func DeriveStatus(quantity, minStockLevel float64, expiryDate, now time.Time) Status {
	if quantity <= 0 {
		return StatusOutOfStock
	}
	if quantity < minStockLevel {
		return StatusLowStock
	}
	if expiryDate.Before(now) {
		return StatusOutOfStock
	}
	if !expiryDate.After(now.Add(ExpiringSoonWindow)) {
		return StatusExpiringSoon
	}
	return StatusInStock
}

// ExpiryFor computes the expiry date for a category from its creation date.
func ExpiryFor(category Category, creationDate time.Time) (time.Time, error) {
	days, ok := shelfLifeDays[category]
	if !ok {
		return time.Time{}, ErrUnknownCategory
	}
	return creationDate.AddDate(0, 0, days), nil
}
