// Package seed populates a fresh database with the initial administrator, the
// machine type catalogue and optional demo data. Every step is idempotent.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"huronportal/internal/auth"
	"huronportal/internal/logger"
	"huronportal/internal/model"
	"huronportal/internal/repository"
	"huronportal/internal/service"
)

const (
	AdminUsername = "admin"
	AdminEmail    = "admin@huronportal.com"
	adminName     = "Administrateur"

	// SystemUser is recorded as creator of seeded rows.
	SystemUser = "system-seed"
)

// Report counts what a seeding step did.
type Report struct {
	Created int
	Skipped int
}

type Seeder struct {
	users        repository.UserRepository
	machineTypes repository.MachineTypeRepository
	machines     repository.MachineRepository
	clients      repository.ClientRepository
	clientSvc    service.ClientService
	machineSvc   service.MachineService
	hasher       auth.PasswordHasher
	log          *slog.Logger
}

func New(
	users repository.UserRepository,
	machineTypes repository.MachineTypeRepository,
	clients repository.ClientRepository,
	machines repository.MachineRepository,
	clientSvc service.ClientService,
	machineSvc service.MachineService,
	hasher auth.PasswordHasher,
) *Seeder {
	return &Seeder{
		users:        users,
		machineTypes: machineTypes,
		machines:     machines,
		clients:      clients,
		clientSvc:    clientSvc,
		machineSvc:   machineSvc,
		hasher:       hasher,
		log:          logger.WithComponent("seed"),
	}
}

var systemActor = &service.Actor{Username: SystemUser}

// Admin creates the initial administrator unless the account already exists.
func (s *Seeder) Admin(ctx context.Context, password string) (Report, error) {
	existing, err := s.users.GetByUsername(ctx, AdminUsername)
	if err != nil {
		return Report{}, fmt.Errorf("lookup admin user: %w", err)
	}
	if existing != nil {
		s.log.Info("admin user already exists", "username", AdminUsername)
		return Report{Skipped: 1}, nil
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return Report{}, fmt.Errorf("hash admin password: %w", err)
	}
	admin := &model.User{
		Username:       AdminUsername,
		Email:          AdminEmail,
		Name:           adminName,
		PasswordDigest: digest,
		Role:           auth.RoleAdmin,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return Report{}, fmt.Errorf("create admin user: %w", err)
	}
	s.log.Info("admin user created", "username", AdminUsername, "email", AdminEmail)
	return Report{Created: 1}, nil
}

// MachineTypes loads the catalogue. Entries whose name is already taken,
// ignoring case, are skipped.
func (s *Seeder) MachineTypes(ctx context.Context) (Report, error) {
	var rep Report
	for _, entry := range Catalogue() {
		exists, err := s.machineTypes.NameExists(ctx, entry.Name, "")
		if err != nil {
			return rep, fmt.Errorf("check machine type %q: %w", entry.Name, err)
		}
		if exists {
			s.log.Debug("machine type skipped", "name", entry.Name, "manufacturer", entry.Manufacturer)
			rep.Skipped++
			continue
		}
		mt := entry
		mt.CreatedBy = SystemUser
		mt.UpdatedBy = SystemUser
		if err := s.machineTypes.Create(ctx, &mt); err != nil {
			return rep, fmt.Errorf("create machine type %q: %w", entry.Name, err)
		}
		rep.Created++
	}
	s.log.Info("machine type catalogue seeded", "created", rep.Created, "skipped", rep.Skipped)
	return rep, nil
}

// Demo creates the demo clients and their machines through the services, so
// machine counts and denormalized client names are maintained.
func (s *Seeder) Demo(ctx context.Context) (Report, error) {
	var rep Report
	serial := 1001
	for i, dc := range demoClients {
		client, err := s.findClient(ctx, dc.CompanyName)
		if err != nil {
			return rep, err
		}
		if client == nil {
			client, err = s.clientSvc.CreateClient(ctx, systemActor, dc)
			if err != nil {
				return rep, fmt.Errorf("create client %q: %w", dc.CompanyName, err)
			}
			rep.Created++
		} else {
			rep.Skipped++
		}

		for j := 0; j < 3+i%5; j++ {
			numeroOL := fmt.Sprintf("OL-%05d", serial)
			kind := demoMachineKinds[serial%len(demoMachineKinds)]
			serial++

			existing, err := s.machines.GetByNumeroOL(ctx, numeroOL)
			if err != nil {
				return rep, fmt.Errorf("lookup machine %s: %w", numeroOL, err)
			}
			if existing != nil {
				rep.Skipped++
				continue
			}
			_, err = s.machineSvc.CreateMachine(ctx, systemActor, service.CreateMachineRequest{
				NumeroOL: numeroOL,
				Type:     kind,
				ClientID: client.ID,
			})
			if err != nil {
				return rep, fmt.Errorf("create machine %s: %w", numeroOL, err)
			}
			rep.Created++
		}
	}
	s.log.Info("demo data seeded", "created", rep.Created, "skipped", rep.Skipped)
	return rep, nil
}

func (s *Seeder) findClient(ctx context.Context, companyName string) (*model.Client, error) {
	page, err := s.clients.List(ctx, repository.ClientFilter{Search: companyName}, repository.PageRequest{})
	if err != nil {
		return nil, fmt.Errorf("lookup client %q: %w", companyName, err)
	}
	for i := range page.Items {
		if strings.EqualFold(page.Items[i].CompanyName, companyName) {
			return &page.Items[i], nil
		}
	}
	return nil, nil
}
