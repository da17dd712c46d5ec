package store

import "net/url"

// RemoveDSNOptions takes a DSN url string and removes from it any query options
// matching one of the `key` received in parameter, used to keep secrets
// out of logs.
//
// For example, transforms `bigtable://project.instance?credentials=/key.json&compression=none` to
// `bigtable://project.instance?compression=none` when passing `credentials` as the key.
func RemoveDSNOptions(dsn string, keys ...string) (string, error) {
	dsnURL, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}

	RemoveDSNOptionsFromURL(dsnURL, keys...)
	return dsnURL.String(), nil
}

// RemoveDSNOptionsFromURL takes a DSN URL and removes from it any query options
// matching one of the `key` received in parameter.
//
// For example, transforms `bigtable://project.instance?credentials=/key.json&compression=none` to
// `bigtable://project.instance?compression=none` when passing `credentials` as the key.
//
// *Note** This transforms the URL receive in place!
func RemoveDSNOptionsFromURL(dsnURL *url.URL, keys ...string) {
	query := dsnURL.Query()
	if len(query) <= 0 {
		return
	}

	for _, key := range keys {
		query.Del(key)
	}

	dsnURL.RawQuery = query.Encode()
}
