package redis

import (
	"encoding/json"
	jsonpatch "github.com/evanphx/json-patch"
)

// Partial documents: redis keys shared with other services. A struct only
// declares the fields this service reads or writes; saving goes through a
// JSON merge patch so fields written by other services survive the update.

func (client *Client) GetPartialDocument(redisKey string, doc interface{}) error {
	response := client.client.Get(ctx, redisKey)
	if response.Err() != nil {
		return response.Err().(Error)
	}
	b, err := response.Bytes()
	if err != nil {
		panic(err)
	}
	return json.Unmarshal(b, doc)
}

// SavePartialDocument merges the struct's fields over the stored JSON
// object. Missing keys get created, unknown stored keys stay untouched and
// nil pointer fields delete their key.
func (client *Client) SavePartialDocument(redisKey string, doc interface{}) error {
	original := []byte("{}")
	response := client.client.Get(ctx, redisKey)
	if response.Err() == nil {
		b, err := response.Bytes()
		if err != nil {
			panic(err)
		}
		original = b
	}

	patch, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	merged, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return err
	}

	setResponse := client.client.Set(ctx, redisKey, merged, 0)
	if setResponse.Err() != nil {
		return setResponse.Err().(Error)
	}
	return nil
}

// UpdatePartialDocument loads the document into doc, runs apply (which is
// expected to mutate doc) and merges the result back, all under the key's
// lock.
func (client *Client) UpdatePartialDocument(redisKey string, doc interface{}, apply func()) (err error) {
	releaseLock, err := client.Lock(redisKey)
	if err != nil {
		return err
	}
	defer func() {
		releaseErr := releaseLock()
		if err == nil {
			err = releaseErr
		}
	}()
	err = client.GetPartialDocument(redisKey, doc)
	if err != nil {
		return err
	}
	apply()
	return client.SavePartialDocument(redisKey, doc)
}
