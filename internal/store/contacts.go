package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Contact is one entry in the contact directory. Variations are alternative
// spoken forms ("maa", "mom") that resolve to Name.
type Contact struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Variations  []string  `json:"variations"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Matches reports whether query equals the name or a variation,
// case-insensitively.
func (c *Contact) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	if strings.ToLower(c.Name) == q {
		return true
	}
	for _, v := range c.Variations {
		if strings.ToLower(v) == q {
			return true
		}
	}
	return false
}

const contactColumns = `id, name, phone_number, variations, created_at, updated_at`

// AddContact inserts a new contact and returns it with ID and timestamps set.
func (d *DB) AddContact(ctx context.Context, name, phone string, variations []string) (*Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("contact name is required")
	}
	vars, err := encodeVariations(variations)
	if err != nil {
		return nil, err
	}

	now := d.timestamp()
	result, err := d.ExecContext(ctx, `
		INSERT INTO contacts (name, phone_number, variations, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, name, phone, vars, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to add contact %q: %w", name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get contact id: %w", err)
	}
	return &Contact{
		ID:          id,
		Name:        name,
		PhoneNumber: phone,
		Variations:  normalizeVariations(variations),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpsertContact inserts the contact or, when the name already exists,
// replaces its phone number and variations.
func (d *DB) UpsertContact(ctx context.Context, name, phone string, variations []string) (*Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("contact name is required")
	}
	vars, err := encodeVariations(variations)
	if err != nil {
		return nil, err
	}

	now := d.timestamp()
	_, err = d.ExecContext(ctx, `
		INSERT INTO contacts (name, phone_number, variations, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name COLLATE NOCASE) DO UPDATE SET
			phone_number = excluded.phone_number,
			variations = excluded.variations,
			updated_at = excluded.updated_at
	`, name, phone, vars, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert contact %q: %w", name, err)
	}
	return d.GetContactByName(ctx, name)
}

// GetContactByName resolves query against names first, then variations,
// both case-insensitively. Returns ErrNotFound when nothing matches.
func (d *DB) GetContactByName(ctx context.Context, query string) (*Contact, error) {
	contacts, err := d.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	for _, c := range contacts {
		if strings.ToLower(c.Name) == q {
			return c, nil
		}
	}
	for _, c := range contacts {
		if c.Matches(q) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("contact %q: %w", query, ErrNotFound)
}

// UpdateContact changes the phone number and/or variations of the contact
// named name. Empty arguments leave the field unchanged.
func (d *DB) UpdateContact(ctx context.Context, name, phone string, variations []string) error {
	sets := []string{"updated_at = ?"}
	args := []any{d.timestamp()}
	if phone != "" {
		sets = append(sets, "phone_number = ?")
		args = append(args, phone)
	}
	if len(variations) > 0 {
		vars, err := encodeVariations(variations)
		if err != nil {
			return err
		}
		sets = append(sets, "variations = ?")
		args = append(args, vars)
	}
	if len(sets) == 1 {
		return nil
	}
	args = append(args, name)

	result, err := d.ExecContext(ctx,
		`UPDATE contacts SET `+strings.Join(sets, ", ")+` WHERE name = ? COLLATE NOCASE`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact %q: %w", name, err)
	}
	return requireAffected(result, "contact "+name)
}

// DeleteContact removes the contact named name.
func (d *DB) DeleteContact(ctx context.Context, name string) error {
	result, err := d.ExecContext(ctx, `DELETE FROM contacts WHERE name = ? COLLATE NOCASE`, name)
	if err != nil {
		return fmt.Errorf("failed to delete contact %q: %w", name, err)
	}
	return requireAffected(result, "contact "+name)
}

// ListContacts returns every contact ordered by name.
func (d *DB) ListContacts(ctx context.Context) ([]*Contact, error) {
	rows, err := d.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// SearchContacts returns contacts whose name or any variation contains
// query, case-insensitively.
func (d *DB) SearchContacts(ctx context.Context, query string) ([]*Contact, error) {
	contacts, err := d.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))

	var matches []*Contact
	for _, c := range contacts {
		if strings.Contains(strings.ToLower(c.Name), q) {
			matches = append(matches, c)
			continue
		}
		for _, v := range c.Variations {
			if strings.Contains(strings.ToLower(v), q) {
				matches = append(matches, c)
				break
			}
		}
	}
	return matches, nil
}

func scanContact(s scanner) (*Contact, error) {
	var c Contact
	var vars string
	if err := s.Scan(&c.ID, &c.Name, &c.PhoneNumber, &vars, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if vars != "" {
		if err := json.Unmarshal([]byte(vars), &c.Variations); err != nil {
			return nil, fmt.Errorf("decoding variations for %q: %w", c.Name, err)
		}
	}
	return &c, nil
}

func encodeVariations(variations []string) (string, error) {
	data, err := json.Marshal(normalizeVariations(variations))
	if err != nil {
		return "", fmt.Errorf("encoding variations: %w", err)
	}
	return string(data), nil
}

// normalizeVariations lower-cases, trims and de-duplicates, keeping order.
func normalizeVariations(variations []string) []string {
	out := make([]string, 0, len(variations))
	seen := make(map[string]struct{}, len(variations))
	for _, v := range variations {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

// IsNotFound reports whether err wraps ErrNotFound or sql.ErrNoRows.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
