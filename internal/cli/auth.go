package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mxcollect/cobradash/internal/common"
	"github.com/mxcollect/cobradash/internal/services"
)

func (a *App) Register(ctx context.Context) error {
	in := services.RegisterInput{}
	var err error
	if in.Name, err = GetSimpleText(a.reader, "Full name", os.Stdout); err != nil {
		return err
	}
	if in.Email, err = GetSimpleText(a.reader, "Email", os.Stdout); err != nil {
		return err
	}
	if in.EmployeeNumber, err = GetSimpleText(a.reader, "Employee number", os.Stdout); err != nil {
		return err
	}
	if in.Title, err = GetSimpleText(a.reader, "Job title", os.Stdout); err != nil {
		return err
	}
	if in.Company, err = GetSimpleText(a.reader, "Company", os.Stdout); err != nil {
		return err
	}
	if in.City, err = GetSimpleText(a.reader, "City", os.Stdout); err != nil {
		return err
	}
	if in.Password, err = GetPassword("Password", os.Stdout); err != nil {
		return err
	}
	if in.ConfirmPassword, err = GetPassword("Confirm password", os.Stdout); err != nil {
		return err
	}

	u, err := a.auth.Register(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrEmailTaken):
			printlnFn("An account with that email already exists.")
		case errors.Is(err, common.ErrValidation):
			printlnFn(err.Error())
		default:
			printlnFn("Registration failed:", err.Error())
		}
		return err
	}
	printlnFn(fmt.Sprintf("Welcome, %s!", u.Name))
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword("Password", os.Stdout)
	if err != nil {
		return err
	}

	u, err := a.auth.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			printlnFn("Invalid email or password.")
		} else {
			printlnFn("Login failed:", err.Error())
		}
		return err
	}
	printlnFn(fmt.Sprintf("Logged in as %s", u.Name))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		printlnFn("Logout failed:", err.Error())
		return err
	}
	printlnFn("Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.sessions.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNoSession) {
			printlnFn("Not logged in.")
			return nil
		}
		return err
	}
	role := "agente"
	if u.IsAdmin {
		role = "administrador"
	}
	printlnFn(fmt.Sprintf("%s <%s>, %s, %s, %s (%s)", u.Name, u.Email, u.Title, u.Company, u.City, role))
	return nil
}

func (a *App) EditProfile(ctx context.Context) error {
	u, err := a.sessions.CurrentUser(ctx)
	if err != nil {
		printlnFn("Not logged in.")
		return err
	}

	name, err := GetSimpleText(a.reader, fmt.Sprintf("Full name [%s]", u.Name), os.Stdout)
	if err != nil {
		return err
	}
	if name == "" {
		name = u.Name
	}
	title, err := GetSimpleText(a.reader, fmt.Sprintf("Job title [%s]", u.Title), os.Stdout)
	if err != nil {
		return err
	}
	if title == "" {
		title = u.Title
	}
	company, err := GetSimpleText(a.reader, fmt.Sprintf("Company [%s]", u.Company), os.Stdout)
	if err != nil {
		return err
	}
	if company == "" {
		company = u.Company
	}
	city, err := GetSimpleText(a.reader, fmt.Sprintf("City [%s]", u.City), os.Stdout)
	if err != nil {
		return err
	}
	if city == "" {
		city = u.City
	}

	if err := a.auth.UpdateProfile(ctx, u.ID, name, title, company, city); err != nil {
		printlnFn("Update failed:", err.Error())
		return err
	}
	printlnFn("Profile updated.")
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	u, err := a.sessions.CurrentUser(ctx)
	if err != nil {
		printlnFn("Not logged in.")
		return err
	}

	current, err := GetPassword("Current password", os.Stdout)
	if err != nil {
		return err
	}
	next, err := GetPassword("New password", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.auth.ChangePassword(ctx, u.ID, current, next); err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			printlnFn("Current password is incorrect.")
		} else {
			printlnFn("Password change failed:", err.Error())
		}
		return err
	}
	printlnFn("Password changed.")
	return nil
}
