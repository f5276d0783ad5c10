package mysql

// -----------------------------------------------------------------------------
// OWNERS
// -----------------------------------------------------------------------------

const insertOwnerSQL = `
INSERT INTO owners (id, email, password_hash, password_salt, created_at)
VALUES (?, ?, ?, ?, ?)
`

const getOwnerByEmailSQL = `
SELECT id, email, password_hash, password_salt, created_at
FROM owners
WHERE email = ?
`

const listOwnerIDsSQL = `SELECT id FROM owners ORDER BY id`

// -----------------------------------------------------------------------------
// GUESTS
// -----------------------------------------------------------------------------

const guestColumns = `id, owner_id, name, email, phone, notes, created_at, updated_at`

const listGuestsSQL = `
SELECT ` + guestColumns + `
FROM guests
WHERE owner_id = ?
ORDER BY name, id
`

const getGuestSQL = `
SELECT ` + guestColumns + `
FROM guests
WHERE owner_id = ? AND id = ?
`

const countGuestsSQL = `SELECT COUNT(*) FROM guests WHERE owner_id = ?`

const insertGuestSQL = `
INSERT INTO guests (id, owner_id, name, email, phone, notes)
VALUES (?, ?, ?, ?, ?, ?)
`

const updateGuestSQL = `
UPDATE guests
SET name = ?, email = ?, phone = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE owner_id = ? AND id = ?
`

// bookings go with the guest through fk_bookings_guest ON DELETE CASCADE.
const deleteGuestSQL = `DELETE FROM guests WHERE owner_id = ? AND id = ?`

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

const bookingSelect = `
SELECT b.id, b.owner_id, b.guest_id, b.check_in_date, b.check_out_date, b.price, b.notes,
       b.created_at, b.updated_at, g.name, g.email, g.phone
FROM bookings b
JOIN guests g ON g.id = b.guest_id AND g.owner_id = b.owner_id
`

const listBookingsSQL = bookingSelect + `
WHERE b.owner_id = ?
ORDER BY b.check_in_date, b.id
`

const getBookingSQL = bookingSelect + `
WHERE b.owner_id = ? AND b.id = ?
`

// The guest must belong to the same owner; zero rows inserted means it does not.
const insertBookingSQL = `
INSERT INTO bookings (id, owner_id, guest_id, check_in_date, check_out_date, price, notes)
SELECT ?, g.owner_id, g.id, ?, ?, ?, ?
FROM guests g
WHERE g.owner_id = ? AND g.id = ?
`

const updateBookingSQL = `
UPDATE bookings b
JOIN guests g ON g.id = ? AND g.owner_id = b.owner_id
SET b.guest_id = g.id, b.check_in_date = ?, b.check_out_date = ?, b.price = ?, b.notes = ?,
    b.updated_at = CURRENT_TIMESTAMP
WHERE b.owner_id = ? AND b.id = ?
`

const deleteBookingSQL = `DELETE FROM bookings WHERE owner_id = ? AND id = ?`
