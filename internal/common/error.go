package common

import (
	"errors"
	"fmt"
	"strings"

	"rasim/internal/rasim"
)

// Error represents the library error object.
type Error struct {
	Code    rasim.Err
	Sev     rasim.ErrSeverity
	Idx     rasim.TrcIndex
	Message string
}

func NewErrorMsg(sev rasim.ErrSeverity, code rasim.Err, msg string) *Error {
	return &Error{
		Code:    code,
		Sev:     sev,
		Idx:     rasim.BadTrcIndex,
		Message: msg,
	}
}

func NewErrorWithIdxMsg(sev rasim.ErrSeverity, code rasim.Err, idx rasim.TrcIndex, msg string) *Error {
	return &Error{
		Code:    code,
		Sev:     sev,
		Idx:     idx,
		Message: msg,
	}
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	switch e.Sev {
	case rasim.ErrSevNone:
		return "LIBRARY INTERNAL ERROR: Invalid Error Object"
	case rasim.ErrSevError:
		sb.WriteString("ERROR:")
	case rasim.ErrSevWarn:
		sb.WriteString("WARN :")
	case rasim.ErrSevInfo:
		sb.WriteString("INFO :")
	default:
		return "LIBRARY INTERNAL ERROR: Invalid Error Object"
	}

	sb.WriteString(fmt.Sprintf("0x%04x ", e.Code))

	if desc, ok := errorCodeDesc[e.Code]; ok {
		sb.WriteString(fmt.Sprintf("(%s) [%s]; ", desc.name, desc.msg))
	} else {
		sb.WriteString("(unknown); ")
	}

	if e.Idx != rasim.BadTrcIndex {
		sb.WriteString(fmt.Sprintf("TrcIdx=%d; ", e.Idx))
	}

	sb.WriteString(e.Message)
	return sb.String()
}

// IsCode reports whether err, or any error it wraps, is an *Error with the given code.
func IsCode(err error, code rasim.Err) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

type errDesc struct {
	name string
	msg  string
}

var errorCodeDesc = map[rasim.Err]errDesc{
	rasim.OK:                 {"RASIM_OK", "No Error."},
	rasim.ErrFail:            {"RASIM_ERR_FAIL", "General failure."},
	rasim.ErrNotInit:         {"RASIM_ERR_NOT_INIT", "Component not initialised."},
	rasim.ErrInvalidParamVal: {"RASIM_ERR_INVALID_PARAM_VAL", "Invalid value parameter passed to component."},
	rasim.ErrAlreadyInit:     {"RASIM_ERR_ALREADY_INIT", "Component already initialised - resizing is not supported."},
	rasim.ErrFileError:       {"RASIM_ERR_FILE_ERROR", "File access error"},
	rasim.ErrTraceParse:      {"RASIM_ERR_TRACE_PARSE", "Replay trace file parse error"},
	rasim.ErrBadSeqNum:       {"RASIM_ERR_BAD_SEQ_NUM", "Sequence number out of order for in-flight history"},
	rasim.ErrConfigParse:     {"RASIM_ERR_CONFIG_PARSE", "Configuration file parse error"},
	rasim.ErrLast:            {"RASIM_ERR_LAST", "No error - error code end marker"},
}
