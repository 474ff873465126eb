package webapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// GetJSONData fetches a JSON response wrapped in a result envelope and returns
// the result object. A status other than 1 yields a *StatusError.
func (c *Client) GetJSONData(ctx context.Context, iface, method string, version int, params *Params) (gjson.Result, error) {
	data, err := c.GetJSON(ctx, iface, method, version, params)
	if err != nil {
		return gjson.Result{}, err
	}

	doc, err := parseJSON(data)
	if err != nil {
		return gjson.Result{}, err
	}

	result := doc.Get("result")
	if !result.IsObject() {
		return gjson.Result{}, &MalformedJSONError{Err: errors.New(`"result" is not an object`)}
	}
	code, err := statusCode(result.Get("status"))
	if err != nil {
		return gjson.Result{}, &MalformedJSONError{Err: err}
	}

	if code != 1 {
		detail := result.Get("statusDetail")
		if detail.Type != gjson.String {
			return gjson.Result{}, &MalformedJSONError{Err: errors.New(`"result.statusDetail" is not a string`)}
		}
		return gjson.Result{}, &StatusError{Status: code, Detail: detail.String()}
	}
	return result, nil
}

// Interfaces returns the apilist.interfaces array of GetSupportedAPIList:
// every interface with its methods available to the configured key.
func (c *Client) Interfaces(ctx context.Context) (gjson.Result, error) {
	data, err := c.GetJSON(ctx, "ISteamWebAPIUtil", "GetSupportedAPIList", 1, nil)
	if err != nil {
		return gjson.Result{}, err
	}

	doc, err := parseJSON(data)
	if err != nil {
		return gjson.Result{}, err
	}

	interfaces := doc.Get("apilist.interfaces")
	if !interfaces.IsArray() {
		return gjson.Result{}, &MalformedJSONError{Err: errors.New(`"apilist.interfaces" is not an array`)}
	}
	return interfaces, nil
}

// statusCode reads result.status, accepting numbers and numeric strings.
func statusCode(status gjson.Result) (int, error) {
	if status.Type != gjson.Number && status.Type != gjson.String {
		return 0, errors.New(`"result.status" is not a number`)
	}
	code, err := cast.ToIntE(status.Value())
	if err != nil {
		return 0, fmt.Errorf(`"result.status" is not a number: %w`, err)
	}
	return code, nil
}

func parseJSON(data string) (gjson.Result, error) {
	if !gjson.Valid(data) {
		return gjson.Result{}, &MalformedJSONError{Err: fmt.Errorf("invalid JSON (%d bytes)", len(data))}
	}
	return gjson.Parse(data), nil
}
