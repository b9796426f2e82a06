// Package storagetest provides an in-memory fake of the S3 API surface the
// storage client uses, for tests.  It follows the SDK's documented testing
// pattern: embed s3iface.S3API and override the methods under test.
package storagetest

import (
	"bytes"
	"io/ioutil"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Fake is an in-memory S3 bucket.  Buckets are not modeled; all keys live in
// one namespace.  Methods the client does not use panic via the embedded nil
// interface.
type Fake struct {
	s3iface.S3API
	Objects map[string][]byte

	// Recorded per key on PutObject.
	ContentTypes map[string]string
	ACLs         map[string]string
}

// New returns a Fake pre-populated with the given objects.
func New(objects map[string][]byte) *Fake {
	if objects == nil {
		objects = make(map[string][]byte)
	}
	return &Fake{
		Objects:      objects,
		ContentTypes: make(map[string]string),
		ACLs:         make(map[string]string),
	}
}

func (f *Fake) sortedKeys() []string {
	keys := make([]string, 0, len(f.Objects))
	for k := range f.Objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ListObjectsV2Pages lists in a single page, honoring Prefix and Delimiter.
func (f *Fake) ListObjectsV2Pages(input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool) error {
	prefix := aws.StringValue(input.Prefix)
	delim := aws.StringValue(input.Delimiter)
	out := &s3.ListObjectsV2Output{}
	seen := make(map[string]bool)
	for _, k := range f.sortedKeys() {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if delim != "" {
			rest := k[len(prefix):]
			if i := strings.Index(rest, delim); i >= 0 {
				cp := prefix + rest[:i+1]
				if !seen[cp] {
					seen[cp] = true
					out.CommonPrefixes = append(out.CommonPrefixes, &s3.CommonPrefix{Prefix: aws.String(cp)})
				}
				continue
			}
		}
		out.Contents = append(out.Contents, &s3.Object{Key: aws.String(k)})
	}
	fn(out, true)
	return nil
}

func (f *Fake) HeadObject(input *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
	if _, ok := f.Objects[aws.StringValue(input.Key)]; !ok {
		return nil, awserr.NewRequestFailure(awserr.New("NotFound", "not found", nil), 404, "")
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *Fake) GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	data, ok := f.Objects[aws.StringValue(input.Key)]
	if !ok {
		return nil, awserr.NewRequestFailure(awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil), 404, "")
	}
	return &s3.GetObjectOutput{Body: ioutil.NopCloser(bytes.NewReader(data))}, nil
}

func (f *Fake) CopyObject(input *s3.CopyObjectInput) (*s3.CopyObjectOutput, error) {
	src := aws.StringValue(input.CopySource)
	if i := strings.Index(src, "/"); i >= 0 {
		src = src[i+1:]
	}
	data, ok := f.Objects[src]
	if !ok {
		return nil, awserr.NewRequestFailure(awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil), 404, "")
	}
	f.Objects[aws.StringValue(input.Key)] = data
	return &s3.CopyObjectOutput{}, nil
}

func (f *Fake) DeleteObject(input *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
	delete(f.Objects, aws.StringValue(input.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *Fake) PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	data, err := ioutil.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	key := aws.StringValue(input.Key)
	f.Objects[key] = data
	f.ContentTypes[key] = aws.StringValue(input.ContentType)
	f.ACLs[key] = aws.StringValue(input.ACL)
	return &s3.PutObjectOutput{}, nil
}
