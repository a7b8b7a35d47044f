package session

import (
	"context"

	"github.com/nerrad567/tellhub/internal/protocol"
)

// handle runs one request. Every failure becomes one error message to this
// session.
func (s *Session) handle(ctx context.Context, msg protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panicked", "kind", string(msg.Kind), "panic", r)
			s.reply(protocol.NewError(msg.ID, msg.Kind, protocol.CodeInternal, "internal error"))
		}
	}()

	if err := s.dispatch(ctx, msg); err != nil {
		s.logger.Warn("request failed", "kind", string(msg.Kind), "error", err)
		s.reply(protocol.NewError(msg.ID, msg.Kind, errorCode(err), err.Error()))
		return
	}
	// Mutations have no reply of their own; the hub broadcast answers them.
	if protocol.IsMutation(msg.Kind) {
		s.logger.Info("mutation applied", "kind", string(msg.Kind), "request_id", msg.ID)
	}
}

func (s *Session) dispatch(ctx context.Context, msg protocol.Message) error {
	switch msg.Kind {
	case protocol.KindFetchDevices:
		devices, err := s.deps.Devices.Refresh(ctx)
		if err != nil {
			return err
		}
		resp, err := protocol.DeviceList(msg.ID, devices)
		if err != nil {
			return err
		}
		s.reply(resp)

	case protocol.KindFetchSchedule:
		snap, err := s.deps.Schedule.GetSchedule(ctx)
		if err != nil {
			return err
		}
		resp, err := protocol.Schedule(msg.ID, snap.Events)
		if err != nil {
			return err
		}
		s.reply(resp)

	case protocol.KindSetDeviceStatus:
		var p protocol.SetDeviceStatusPayload
		if err := protocol.DecodePayload(msg, &p); err != nil {
			return err
		}
		return s.deps.Devices.SetStatus(ctx, *p.DeviceID)

	case protocol.KindAddDevice:
		var p protocol.AddDevicePayload
		if err := protocol.DecodePayload(msg, &p); err != nil {
			return err
		}
		dev, err := s.deps.Devices.RegisterDevice(ctx, p.Candidate())
		if err != nil {
			return err
		}
		s.logger.Debug("device registered", "device_id", dev.ID, "name", dev.Name)

	case protocol.KindAddScheduledEvent:
		var p protocol.AddScheduledEventPayload
		if err := protocol.DecodePayload(msg, &p); err != nil {
			return err
		}
		if _, err := s.deps.Schedule.InsertEvent(ctx, p.Event()); err != nil {
			return err
		}
	}
	return nil
}
