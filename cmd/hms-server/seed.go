package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/pharmacy"
	"github.com/hms/hms/internal/domain/settings"
	"github.com/hms/hms/internal/domain/staff"
	"github.com/hms/hms/internal/domain/ward"
	"github.com/hms/hms/internal/platform/db"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo data into a branch schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			branch, _ := cmd.Flags().GetString("branch")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			conn, err := pool.Acquire(ctx)
			if err != nil {
				return fmt.Errorf("acquire connection: %w", err)
			}
			defer conn.Release()

			schema := "branch_" + branch
			if _, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s, public", schema)); err != nil {
				return fmt.Errorf("set search_path: %w", err)
			}

			// Repositories route queries through the branch connection
			// carried in the context, same as the HTTP middleware does.
			ctx = context.WithValue(ctx, db.BranchIDKey, branch)
			ctx = context.WithValue(ctx, db.DBConnKey, conn)

			if err := seedDemoData(ctx, pool); err != nil {
				return err
			}
			fmt.Printf("Seeded demo data into schema %s.\n", schema)
			return nil
		},
	}
	cmd.Flags().String("branch", "main", "Branch identifier")
	return cmd
}

func seedDemoData(ctx context.Context, pool *pgxpool.Pool) error {
	wardRepo := ward.NewWardRepoPG(pool)
	bedTypeRepo := ward.NewBedTypeRepoPG(pool)
	bedRepo := ward.NewBedRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool)
	staffRepo := staff.NewRepoPG(pool)
	medicineRepo := pharmacy.NewRepoPG(pool)
	scheduleRepo := settings.NewScheduleRepoPG(pool)
	itemRepo := settings.NewServiceItemRepoPG(pool)

	general := &ward.Ward{Name: "General Ward A", Kind: ward.KindGeneral, Active: true}
	icu := &ward.Ward{Name: "ICU", Kind: ward.KindICU, Active: true}
	private := &ward.Ward{Name: "Private Wing", Kind: ward.KindPrivate, Active: true}
	for _, w := range []*ward.Ward{general, icu, private} {
		if err := wardRepo.Create(ctx, w); err != nil {
			return fmt.Errorf("seed ward %s: %w", w.Name, err)
		}
	}

	standard := &ward.BedType{
		Name:           "Standard",
		DailyRateCents: 150000,
		MaxOccupancy:   4,
		Amenities:      ward.Amenities{List: []string{"shared bathroom"}},
	}
	icuType := &ward.BedType{
		Name:           "ICU",
		DailyRateCents: 850000,
		MaxOccupancy:   1,
		Amenities:      ward.Amenities{List: []string{"ventilator", "monitor"}},
	}
	deluxe := &ward.BedType{
		Name:           "Deluxe",
		DailyRateCents: 450000,
		MaxOccupancy:   1,
		Amenities:      ward.Amenities{List: []string{"private bathroom", "tv", "ac"}},
	}
	for _, bt := range []*ward.BedType{standard, icuType, deluxe} {
		if err := bedTypeRepo.Create(ctx, bt); err != nil {
			return fmt.Errorf("seed bed type %s: %w", bt.Name, err)
		}
	}

	beds := []*ward.Bed{
		{WardID: general.ID, BedTypeID: standard.ID, Number: "A-101", Status: ward.BedAvailable},
		{WardID: general.ID, BedTypeID: standard.ID, Number: "A-102", Status: ward.BedAvailable},
		{WardID: general.ID, BedTypeID: standard.ID, Number: "A-103", Status: ward.BedAvailable},
		{WardID: general.ID, BedTypeID: standard.ID, Number: "A-104", Status: ward.BedMaintenance},
		{WardID: icu.ID, BedTypeID: icuType.ID, Number: "ICU-1", Status: ward.BedAvailable},
		{WardID: icu.ID, BedTypeID: icuType.ID, Number: "ICU-2", Status: ward.BedAvailable},
		{WardID: private.ID, BedTypeID: deluxe.ID, Number: "P-201", Status: ward.BedAvailable},
		{WardID: private.ID, BedTypeID: deluxe.ID, Number: "P-202", Status: ward.BedAvailable},
	}
	for _, b := range beds {
		if err := bedRepo.Create(ctx, b); err != nil {
			return fmt.Errorf("seed bed %s: %w", b.Number, err)
		}
	}

	cardiology := "Cardiology"
	members := []*staff.Member{
		{EmployeeCode: "EMP-0001", FirstName: "Asha", LastName: "Menon", Role: staff.RoleAdmin, Phone: "9000000001", Email: "asha.menon@example.org", Active: true},
		{EmployeeCode: "EMP-0002", FirstName: "Ravi", LastName: "Iyer", Role: staff.RoleDoctor, Department: &cardiology, Phone: "9000000002", Email: "ravi.iyer@example.org", Active: true},
		{EmployeeCode: "EMP-0003", FirstName: "Priya", LastName: "Nair", Role: staff.RoleNurse, Phone: "9000000003", Email: "priya.nair@example.org", Active: true},
		{EmployeeCode: "EMP-0004", FirstName: "Sunil", LastName: "Shetty", Role: staff.RoleReceptionist, Phone: "9000000004", Email: "sunil.shetty@example.org", Active: true},
		{EmployeeCode: "EMP-0005", FirstName: "Meera", LastName: "Joshi", Role: staff.RolePharmacist, Phone: "9000000005", Email: "meera.joshi@example.org", Active: true},
	}
	for _, m := range members {
		if err := staffRepo.Create(ctx, m); err != nil {
			return fmt.Errorf("seed staff %s: %w", m.EmployeeCode, err)
		}
	}

	patientSvc := patient.NewService(patientRepo)
	patients := []*patient.Patient{
		{FirstName: "Rahul", LastName: "Sharma", Gender: patient.GenderMale, Phone: "9100000001"},
		{FirstName: "Lakshmi", LastName: "Pillai", Gender: patient.GenderFemale, Phone: "9100000002"},
		{FirstName: "Arjun", LastName: "Das", Gender: patient.GenderMale, Phone: "9100000003"},
	}
	for _, p := range patients {
		if err := patientSvc.Create(ctx, p); err != nil {
			return fmt.Errorf("seed patient %s %s: %w", p.FirstName, p.LastName, err)
		}
	}

	medicines := []*pharmacy.Medicine{
		{Name: "Amoxicillin 500mg", UnitPriceCents: 1200, StockQuantity: 200, ReorderLevel: 40},
		{Name: "Paracetamol 650mg", UnitPriceCents: 300, StockQuantity: 500, ReorderLevel: 100},
		{Name: "Insulin Glargine", UnitPriceCents: 85000, StockQuantity: 25, ReorderLevel: 30},
	}
	for _, m := range medicines {
		if err := medicineRepo.Create(ctx, m); err != nil {
			return fmt.Errorf("seed medicine %s: %w", m.Name, err)
		}
	}

	hours := &settings.Hours{
		BusinessStart: "09:00",
		BusinessEnd:   "17:00",
		LunchStart:    "13:00",
		LunchEnd:      "14:00",
	}
	if err := scheduleRepo.SaveHours(ctx, hours); err != nil {
		return fmt.Errorf("seed facility hours: %w", err)
	}
	sessions := []*settings.SessionTemplate{
		{Name: "Morning OPD", ShortCode: "MOR", Start: "09:00", End: "13:00", MaxTokens: 40, Active: true},
		{Name: "Evening OPD", ShortCode: "EVE", Start: "14:00", End: "17:00", MaxTokens: 30, Active: true},
	}
	if err := scheduleRepo.ReplaceSessions(ctx, sessions); err != nil {
		return fmt.Errorf("seed session templates: %w", err)
	}

	items := []*settings.ServiceItem{
		{
			Name: "Appendectomy", Category: settings.ItemCategoryOT, BasePriceCents: 4500000, TaxRateBps: 500,
			BillingDefaults: settings.BillingDefaults{SurgeonFeeCents: 2000000, AssistantFeeCents: 500000, AnesthesiaFeeCents: 800000, OtChargeCents: 1200000},
			Active:          true,
		},
		{Name: "Chest X-Ray", Category: settings.ItemCategoryImaging, BasePriceCents: 60000, TaxRateBps: 500, Active: true},
		{Name: "Complete Blood Count", Category: settings.ItemCategoryLab, BasePriceCents: 35000, TaxRateBps: 0, Active: true},
	}
	for _, item := range items {
		if err := itemRepo.Create(ctx, item); err != nil {
			return fmt.Errorf("seed service item %s: %w", item.Name, err)
		}
	}

	return nil
}
