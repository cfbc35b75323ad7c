package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"procurement/internal/apperror"
	"procurement/internal/config"
	"procurement/internal/model"
	"procurement/internal/policy"
	"procurement/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type demoUser struct {
	email, password, name, role, department string
}

var demoUsers = []demoUser{
	{"admin@ella.com", "admin123", "Admin User", model.RoleAdmin, "Administration"},
	{"ella@ella.com", "ella123", "Emmanuella Nana Ama Weir", model.RoleRequester, "Operations"},
	{"depthead@ella.com", "dept123", "Department Head", model.RoleDeptHead, "Operations"},
	{"procurement@ella.com", "proc123", "Procurement Officer", model.RoleProcurement, "Procurement"},
	{"john.doe@ella.com", "john123", "John Doe", model.RoleRequester, "IT"},
	{"it.head@ella.com", "head123", "IT Department Head", model.RoleDeptHead, "IT"},
}

func NewSeedCommand() *cobra.Command {
	f := NewDBFlags()
	var sampleData bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Creates the demo accounts and, optionally, sample requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}
			db, err := f.Open(cfg)
			if err != nil {
				return fmt.Errorf("could not connect to db: %w", err)
			}

			ctx := context.Background()
			a, err := newApp(ctx, cfg, db, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			principals, err := seedUsers(ctx, a.users)
			if err != nil {
				return err
			}
			if sampleData {
				return seedRequests(ctx, a, principals)
			}
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	cmd.Flags().BoolVar(&sampleData, "sample-data", false, "Also create sample requests and a purchase order")
	return cmd
}

// seedUsers registers every demo account, keeping existing ones
func seedUsers(ctx context.Context, users service.UserService) (map[string]policy.Principal, error) {
	principals := make(map[string]policy.Principal, len(demoUsers))
	for _, u := range demoUsers {
		res, err := users.Register(ctx, service.RegisterRequest{
			Email:      u.email,
			Password:   u.password,
			Name:       u.name,
			Role:       u.role,
			Department: u.department,
		})
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			log.WithField("email", u.email).Info("user already exists, skipping")
			res, err = users.Login(ctx, service.LoginRequest{Email: u.email, Password: u.password})
		}
		if err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", u.email, err)
		}

		p, err := users.ResolvePrincipal(ctx, res.User.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", u.email, err)
		}
		principals[u.email] = p
	}
	log.WithField("count", len(principals)).Info("demo users ready")
	return principals, nil
}

func seedRequests(ctx context.Context, a *app, principals map[string]policy.Principal) error {
	ella := principals["ella@ella.com"]
	john := principals["john.doe@ella.com"]
	head := principals["depthead@ella.com"]
	officer := principals["procurement@ella.com"]

	item := func(name string, quantity int, price float64, unit string) service.RequestItemInput {
		return service.RequestItemInput{Name: name, Quantity: quantity, EstimatedPrice: decimal.NewFromFloat(price), Unit: unit}
	}

	samples := []struct {
		actor policy.Principal
		input service.CreateRequestInput
	}{
		{ella, service.CreateRequestInput{
			Title:       "Office Supplies for Q1",
			Description: "Need office supplies including pens, papers, and folders for the first quarter",
			Priority:    model.PriorityMedium,
			Items: []service.RequestItemInput{
				item("Blue Pens", 100, 0.5, "pcs"),
				item("A4 Paper Reams", 20, 5, "reams"),
				item("File Folders", 50, 1, "pcs"),
			},
		}},
		{john, service.CreateRequestInput{
			Title:       "Laptop Computers",
			Description: "Need 5 new laptop computers for new employees",
			Priority:    model.PriorityHigh,
			Items:       []service.RequestItemInput{item("Dell Latitude 5520", 5, 1200, "pcs")},
		}},
		{ella, service.CreateRequestInput{
			Title:       "Cleaning Supplies",
			Description: "Monthly cleaning supplies for office maintenance",
			Priority:    model.PriorityLow,
			Items: []service.RequestItemInput{
				item("Disinfectant Spray", 10, 8, "bottles"),
				item("Paper Towels", 30, 3, "rolls"),
				item("Trash Bags", 5, 12, "boxes"),
			},
		}},
	}

	var last uuid.UUID
	for _, s := range samples {
		req, err := a.requests.CreateRequest(ctx, s.actor, s.input)
		if err != nil {
			return fmt.Errorf("failed to seed request %q: %w", s.input.Title, err)
		}
		log.WithField("request_number", req.RequestNumber).Info("sample request created")
		last = req.ID
	}

	if _, err := a.requests.ApproveRequest(ctx, head, last); err != nil {
		return fmt.Errorf("failed to approve sample request: %w", err)
	}

	po, err := a.orders.CreatePurchaseOrder(ctx, officer, last, service.CreatePurchaseOrderInput{
		Supplier: service.SupplierInput{
			Name:    "CleanPro Supplies Inc.",
			Contact: "+1-555-0123",
			Email:   "sales@cleanpro.com",
			Address: "123 Supplier Street, Business City, BC 12345",
		},
		Items: []service.PurchaseOrderItemInput{
			{Name: "Disinfectant Spray", Quantity: 10, UnitPrice: decimal.RequireFromString("7.5"), Unit: "bottles"},
			{Name: "Paper Towels", Quantity: 30, UnitPrice: decimal.RequireFromString("2.8"), Unit: "rolls"},
			{Name: "Trash Bags", Quantity: 5, UnitPrice: decimal.NewFromInt(11), Unit: "boxes"},
		},
		Tax:          decimal.RequireFromString("21.4"),
		DeliveryDate: time.Now().AddDate(0, 0, 7).Format(time.DateOnly),
	})
	if err != nil {
		return fmt.Errorf("failed to seed purchase order: %w", err)
	}
	log.WithFields(log.Fields{"po_number": po.PONumber, "grand_total": po.GrandTotal}).Info("sample purchase order created")
	return nil
}
