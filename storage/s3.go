// Package storage wraps the S3 operations used by the assembly pipeline
// scripts: prefix listing, copy/delete, existence checks, small-object reads
// (optionally gzip-compressed) and uploads.  Every call is attempted exactly
// once; there is no retry policy beyond the SDK's defaults.
package storage

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Client is a thin wrapper over the AWS S3 API.
type Client struct {
	api s3iface.S3API
}

// New returns a client for an S3-compatible endpoint, using ambient
// credentials.  Path-style addressing is forced since the pipeline buckets
// live behind non-AWS endpoints.
func New(endpoint string) (*Client, error) {
	cfg := aws.NewConfig().WithRegion("us-east-1").WithS3ForcePathStyle(true)
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint)
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *cfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, errors.Wrap(err, "storage: creating AWS session")
	}
	return &Client{api: s3.New(sess)}, nil
}

// NewWithAPI returns a client backed by an existing API implementation.
func NewWithAPI(api s3iface.S3API) *Client {
	return &Client{api: api}
}

// ensureDir appends a trailing slash so a prefix names a "directory".
func ensureDir(prefix string) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		return prefix + "/"
	}
	return prefix
}

// List returns the keys under prefix.  When recursive is false, only keys in
// the immediate "directory" are returned.
func (c *Client) List(bucket, prefix string, recursive bool) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}
	if !recursive {
		input.Delimiter = aws.String("/")
	}
	var keys []string
	err := c.api.ListObjectsV2Pages(input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrapf(err, "storage: listing s3://%s/%s", bucket, prefix)
	}
	return keys, nil
}

// Subdirs returns the names (not full prefixes) of the immediate child
// directories under prefix.
func (c *Client) Subdirs(bucket, prefix string) ([]string, error) {
	prefix = ensureDir(prefix)
	dirs, err := c.commonPrefixes(bucket, prefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(dirs))
	for _, d := range dirs {
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(d, prefix), "/"))
	}
	return names, nil
}

// DirsByPrefix returns the full prefixes (with trailing slash) of the
// directories directly under prefix.
func (c *Client) DirsByPrefix(bucket, prefix string) ([]string, error) {
	return c.commonPrefixes(bucket, ensureDir(prefix))
}

func (c *Client) commonPrefixes(bucket, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}
	var dirs []string
	err := c.api.ListObjectsV2Pages(input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, cp := range page.CommonPrefixes {
			dirs = append(dirs, aws.StringValue(cp.Prefix))
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrapf(err, "storage: listing s3://%s/%s", bucket, prefix)
	}
	return dirs, nil
}

// Copy duplicates src to dst within the bucket.
func (c *Client) Copy(bucket, src, dst string) error {
	_, err := c.api.CopyObject(&s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		CopySource: aws.String(bucket + "/" + src),
		Key:        aws.String(dst),
	})
	return errors.Wrapf(err, "storage: copying s3://%s/%s to %s", bucket, src, dst)
}

// Delete removes the object at key.
func (c *Client) Delete(bucket, key string) error {
	_, err := c.api.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return errors.Wrapf(err, "storage: deleting s3://%s/%s", bucket, key)
}

// Exists reports whether an object exists at key.  A missing object is not an
// error.
func (c *Client) Exists(bucket, key string) (bool, error) {
	_, err := c.api.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if reqErr, ok := err.(awserr.RequestFailure); ok && reqErr.StatusCode() == 404 {
			return false, nil
		}
		if aerr, ok := err.(awserr.Error); ok && (aerr.Code() == "NotFound" || aerr.Code() == s3.ErrCodeNoSuchKey) {
			return false, nil
		}
		return false, errors.Wrapf(err, "storage: heading s3://%s/%s", bucket, key)
	}
	return true, nil
}

// Get returns the object's bytes, gzip-decompressed when the key ends in
// ".gz".
func (c *Client) Get(bucket, key string) ([]byte, error) {
	out, err := c.api.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "storage: getting s3://%s/%s", bucket, key)
	}
	defer out.Body.Close() // nolint: errcheck
	var r io.Reader = out.Body
	if strings.HasSuffix(key, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "storage: decompressing s3://%s/%s", bucket, key)
		}
		defer gz.Close() // nolint: errcheck
		r = gz
	}
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "storage: reading s3://%s/%s", bucket, key)
	}
	return data, nil
}

// GetJSON reads the object at key and unmarshals it into v.
func (c *Client) GetJSON(bucket, key string, v interface{}) error {
	data, err := c.Get(bucket, key)
	if err != nil {
		return err
	}
	return errors.Wrapf(json.Unmarshal(data, v), "storage: parsing s3://%s/%s", bucket, key)
}

// Lines reads the object at key as line-delimited text, dropping the first
// skip lines and any trailing empty line.
func (c *Client) Lines(bucket, key string, skip int) ([]string, error) {
	data, err := c.Get(bucket, key)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if skip >= len(lines) {
		return nil, nil
	}
	return lines[skip:], nil
}

// Upload writes body to key with a public-read ACL and the given content
// type and disposition (either may be empty).
func (c *Client) Upload(bucket, key string, body io.ReadSeeker, contentType, contentDisposition string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
		ACL:    aws.String(s3.ObjectCannedACLPublicRead),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if contentDisposition != "" {
		input.ContentDisposition = aws.String(contentDisposition)
	}
	_, err := c.api.PutObject(input)
	return errors.Wrapf(err, "storage: uploading s3://%s/%s", bucket, key)
}
