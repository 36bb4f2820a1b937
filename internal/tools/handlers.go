package tools

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/notexe/mobile-agent/internal/config"
	"github.com/notexe/mobile-agent/internal/device"
	"github.com/notexe/mobile-agent/internal/gesture"
	"github.com/notexe/mobile-agent/internal/parser"
	"github.com/notexe/mobile-agent/internal/result"
	"github.com/notexe/mobile-agent/internal/rpc"
)

// Service implements the tool methods against the backend selected at
// startup. Handlers never pick a platform per request; the backend is fixed
// for the process lifetime.
type Service struct {
	backend device.Backend
	cfg     *config.Config
	log     *slog.Logger
}

func NewService(backend device.Backend, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{backend: backend, cfg: cfg, log: log}
}

// RegisterAll wires every tool method into the registry.
func (s *Service) RegisterAll(r *Registry) {
	r.Register("device.list", "List attached devices or simulators", false, s.handleDeviceList)
	r.Register("device.info", "Report display metrics and identity of a device", false, s.handleDeviceInfo)
	r.Register("app.list", "List installed package identifiers", false, s.handleAppList)
	r.Register("app.info", "Fetch and format app metadata for a package", false, s.handleAppInfo)
	r.Register("app.launch", "Launch an app by package identifier", true, s.handleAppLaunch)
	r.Register("ui.hierarchy", "Dump the UI hierarchy of the current screen", false, s.handleUIHierarchy)
	r.Register("ui.find", "Find a single UI element by text or identifier", false, s.handleUIFind)
	r.Register("ui.elements", "List UI elements, optionally filtered by text or identifier", false, s.handleUIElements)
	r.Register("ui.tap", "Tap at screen coordinates", true, s.handleUITap)
	r.Register("ui.swipe", "Swipe in a direction with normalized distance and speed", true, s.handleUISwipe)
	r.Register("ui.type", "Type text into the focused input", true, s.handleUIType)
	r.Register("ui.press", "Press a hardware button", true, s.handleUIPress)
	r.Register("shell.run", "Run an allow-listed raw shell command on a device", true, s.handleShellRun)
}

// domainError maps backend failures onto the domain error codes so callers
// can tell a malformed request from a failing device.
func domainError(err error) *rpc.Error {
	var resolution *device.ResolutionError
	if errors.As(err, &resolution) {
		return rpc.DeviceError(resolution.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return rpc.AutomationError("operation timed out: " + err.Error())
	}
	return rpc.AutomationError(err.Error())
}

func (s *Service) handleDeviceList(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
	devices, err := s.backend.ListDevices(ctx)
	if err != nil {
		return nil, domainError(err)
	}

	entries := make([]result.DeviceEntry, 0, len(devices))
	for _, d := range devices {
		entries = append(entries, result.DeviceEntry{ID: d.ID, Name: d.Name, Platform: d.Platform})
	}
	return result.DeviceList{Success: true, Devices: entries}, nil
}

func (s *Service) handleDeviceInfo(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
	m, err := s.backend.DisplayMetrics(ctx, p.StringOr("device", ""))
	if err != nil {
		return nil, domainError(err)
	}

	return result.DeviceInfo{
		Width:     m.Width,
		Height:    m.Height,
		Rotation:  m.Rotation,
		Product:   m.Product,
		OSVersion: m.OSVersion,
		Success:   true,
	}, nil
}

func (s *Service) handleAppList(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
	packages, err := s.backend.ListApps(ctx, p.StringOr("device", ""))
	if err != nil {
		return nil, domainError(err)
	}
	return result.StringList{Success: true, Key: "packages", Values: packages}, nil
}

func (s *Service) handleAppInfo(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
	pkg, ok := p.String("package")
	if !ok || pkg == "" {
		return nil, rpc.InvalidParams("missing required parameter: package")
	}

	raw, err := s.backend.GetAppInfo(ctx, pkg, p.StringOr("device", ""))
	if err != nil {
		return nil, domainError(err)
	}

	return result.Text{Success: true, Key: "report", Value: parser.FormatAppInfo(raw, pkg)}, nil
}

func (s *Service) handleAppLaunch(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
	pkg, ok := p.String("package")
	if !ok || pkg == "" {
		return nil, rpc.InvalidParams("missing required parameter: package")
	}

	launched, err := s.backend.LaunchApp(ctx, pkg, p.StringOr("activity", ""), p.StringOr("device", ""))
	if err != nil {
		return nil, domainError(err)
	}
	if !launched {
		return result.Failed("app not found: " + pkg), nil
	}
	return result.OK(), nil
}

func (s *Service) handleUIHierarchy(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
	raw, err := s.backend.Hierarchy(ctx, p.StringOr("device", ""))
	if err != nil {
		return nil, domainError(err)
	}
	return result.UIHierarchy{Success: true, Hierarchy: raw}, nil
}

func elementQuery(p rpc.Params) device.Query {
	return device.Query{
		Text: p.StringOr("text", ""),
		ID:   p.StringOr("id", ""),
	}
}

func toResultElement(el device.UIElement) result.Element {
	out := result.Element{
		Found:      true,
		Text:       el.Text,
		Identifier: el.Identifier,
		Type:       el.Type,
		Label:      el.Label,
		Enabled:    el.Enabled,
	}
	if el.HasBounds {
		out.Bounds = &result.Bounds{X: el.X, Y: el.Y, Width: el.Width, Height: el.Height}
	}
	return out
}

func (s *Service) handleUIFind(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
	q := elementQuery(p)
	if q.Text == "" && q.ID == "" {
		return nil, rpc.InvalidParams("one of text or id is required")
	}

	elements, err := s.backend.FindElements(ctx, p.StringOr("device", ""), q)
	if err != nil {
		return nil, domainError(err)
	}
	if len(elements) == 0 {
		return result.Element{Found: false}, nil
	}
	return toResultElement(elements[0]), nil
}

func (s *Service) handleUIElements(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
	elements, err := s.backend.FindElements(ctx, p.StringOr("device", ""), elementQuery(p))
	if err != nil {
		return nil, domainError(err)
	}

	list := result.ElementList{Success: true, Elements: make([]result.Element, 0, len(elements))}
	for _, el := range elements {
		list.Elements = append(list.Elements, toResultElement(el))
	}
	return list, nil
}

func (s *Service) handleUITap(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
	x, ok := p.Int("x")
	if !ok {
		return nil, rpc.InvalidParams("missing or non-numeric parameter: x")
	}
	y, ok := p.Int("y")
	if !ok {
		return nil, rpc.InvalidParams("missing or non-numeric parameter: y")
	}

	if err := s.backend.Tap(ctx, p.StringOr("device", ""), x, y); err != nil {
		return nil, domainError(err)
	}
	return result.OK(), nil
}

func (s *Service) handleUISwipe(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
	rawDir, ok := p.String("direction")
	if !ok {
		return nil, rpc.InvalidParams("missing required parameter: direction")
	}
	dir, err := gesture.ParseDirection(rawDir)
	if err != nil {
		return nil, rpc.InvalidParams(err.Error())
	}
	dist, err := gesture.ParseDistance(p.StringOr("distance", ""))
	if err != nil {
		return nil, rpc.InvalidParams(err.Error())
	}
	speed, err := gesture.ParseSpeed(p.StringOr("speed", ""))
	if err != nil {
		return nil, rpc.InvalidParams(err.Error())
	}

	deviceID := p.StringOr("device", "")
	metrics, err := s.backend.DisplayMetrics(ctx, deviceID)
	if err != nil {
		return nil, domainError(err)
	}

	plan := gesture.PlanSwipe(metrics.Width, metrics.Height, dir, dist, speed)
	swipe := device.Swipe{
		FromX:      plan.FromX,
		FromY:      plan.FromY,
		ToX:        plan.ToX,
		ToY:        plan.ToY,
		DurationMS: int(plan.Duration.Milliseconds()),
	}
	if err := s.backend.Swipe(ctx, deviceID, swipe); err != nil {
		return nil, domainError(err)
	}
	return result.OK(), nil
}

func (s *Service) handleUIType(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
	text, ok := p.String("text")
	if !ok || text == "" {
		return nil, rpc.InvalidParams("missing required parameter: text")
	}

	if err := s.backend.TypeText(ctx, p.StringOr("device", ""), text); err != nil {
		return nil, domainError(err)
	}
	return result.OK(), nil
}

func (s *Service) handleUIPress(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
	button, ok := p.String("button")
	if !ok || button == "" {
		return nil, rpc.InvalidParams("missing required parameter: button")
	}

	if err := s.backend.PressButton(ctx, p.StringOr("device", ""), button); err != nil {
		return nil, domainError(err)
	}
	return result.OK(), nil
}

// handleShellRun is the raw escape hatch. The first token of the command
// must appear in the configured allow-list; with an empty list every command
// is rejected before reaching a device.
func (s *Service) handleShellRun(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
	command, ok := p.String("command")
	if !ok || strings.TrimSpace(command) == "" {
		return nil, rpc.InvalidParams("missing required parameter: command")
	}

	if !s.commandAllowed(command) {
		return nil, rpc.InvalidParams("command not permitted by allow-list: " + command)
	}

	out, err := s.backend.ExecuteShell(ctx, command, p.StringOr("device", ""))
	if err != nil {
		return nil, domainError(err)
	}
	return result.Text{Success: true, Key: "output", Value: out}, nil
}

func (s *Service) commandAllowed(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}
	for _, allowed := range s.cfg.Shell.Allowlist {
		if fields[0] == allowed {
			return true
		}
	}
	return false
}
