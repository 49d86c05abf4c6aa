package importer

import (
	"fmt"

	"vinsync/internal/legacy"
	"vinsync/internal/models"
	"vinsync/internal/normalize"
	"vinsync/internal/pool"
)

// customerDraft accumulates the join-duplicated rows for one customer.
// The address-book join emits one row per address.
type customerDraft struct {
	row       legacy.CustomerRow
	addresses []legacy.CustomerRow
}

// ImportCustomers pulls the legacy customer base with their address books,
// backfilling a missing US state from the ZIP prefix, then diff-deletes
// rows from earlier generations.
func (i *Importer) ImportCustomers() (*Report, error) {
	rows, err := i.source.Customers()
	if err != nil {
		return nil, err
	}

	drafts := make(map[int64]*customerDraft)
	var order []int64
	for _, row := range rows {
		if !row.CustomerID.Valid {
			continue
		}
		d, ok := drafts[row.CustomerID.Int64]
		if !ok {
			d = &customerDraft{row: row}
			drafts[row.CustomerID.Int64] = d
			order = append(order, row.CustomerID.Int64)
		}
		if row.AddressID.Valid {
			d.addresses = append(d.addresses, row)
		}
	}

	report := &Report{}
	tasks := make([]pool.Task, 0, len(order))
	for _, id := range order {
		draft := drafts[id]
		tasks = append(tasks, pool.Task{
			Key: fmt.Sprintf("customer %d", id),
			Run: func() error {
				if err := i.importCustomer(draft); err != nil {
					i.logger.Error("customer %d: %v", id, err)
					report.skip(fmt.Sprintf("%d", id))
					return err
				}
				report.imported()
				return nil
			},
		})
	}
	pool.Run(i.workers, tasks)

	if err := i.store.DeleteStaleCustomers(i.runID); err != nil {
		return report, err
	}
	i.logger.Info("Imported %d customers (%d skipped)", report.Imported, report.Skipped)
	return report, nil
}

func (i *Importer) importCustomer(draft *customerDraft) error {
	row := draft.row

	customer := &models.Customer{
		CustomerID: int(row.CustomerID.Int64),

		Email: normalize.Text(row.Email.String),
		Phone: normalize.Text(row.Phone.String),

		FirstName: normalize.Text(row.FirstName.String),
		LastName:  normalize.Text(row.LastName.String),
		Gender:    normalize.Text(row.Gender.String),

		Newsletter: row.Newsletter.Int64 == 1,
		SMS:        true,

		RunID: i.runID,
	}
	if row.DefaultID.Valid && row.DefaultID.Int64 != 0 {
		defaultID := int(row.DefaultID.Int64)
		customer.DefaultAddress = &defaultID
	}

	if err := i.store.SaveCustomer(customer); err != nil {
		return err
	}

	for _, addressRow := range draft.addresses {
		address := &models.Address{
			AddressID: int(addressRow.AddressID.Int64),

			FirstName: normalize.Text(addressRow.EntryFirst.String),
			LastName:  normalize.Text(addressRow.EntryLast.String),
			Company:   normalize.Text(addressRow.EntryCompany.String),
			Address1:  normalize.Text(addressRow.StreetAddress.String),
			Address2:  normalize.Text(addressRow.Suburb.String),
			City:      normalize.Text(addressRow.City.String),
			State:     normalize.Text(addressRow.State.String),
			Zip:       normalize.Text(addressRow.Postcode.String),
			Country:   normalize.Text(addressRow.Country.String),

			CustomerID: customer.CustomerID,

			RunID: i.runID,
		}
		if address.State == "" && address.Country == "United States" && address.Zip != "" {
			address.State = ZipState(address.Zip)
		}
		if err := i.store.SaveAddress(address); err != nil {
			return err
		}
	}
	return nil
}
