package xmlwriter

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Compact(t *testing.T) {
	root := NewElement("Period").
		AppendText("Begin", "2023-01-01").
		AppendText("End", "2023-01-31")

	out, err := MarshalString(root, FragmentOptions())
	require.NoError(t, err)
	assert.Equal(t, "<Period><Begin>2023-01-01</Begin><End>2023-01-31</End></Period>", out)
}

func TestMarshal_IndentedWithDeclaration(t *testing.T) {
	root := NewElement("Report").SetAttr("ID", "JR1")
	root.Append(NewElement("Vendor").AppendText("ID", "v1"))

	out, err := MarshalString(root, DefaultOptions())
	require.NoError(t, err)

	want := "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n" +
		"<Report ID=\"JR1\">\n" +
		"  <Vendor>\n" +
		"    <ID>v1</ID>\n" +
		"  </Vendor>\n" +
		"</Report>\n"
	assert.Equal(t, want, out)
}

func TestMarshal_EscapesTextAndAttributes(t *testing.T) {
	root := NewElement("Name").SetAttr("Title", `"A" & 'B'`)
	root.Value = "Fish <&> Chips"

	out, err := MarshalString(root, FragmentOptions())
	require.NoError(t, err)
	assert.Equal(t, `<Name Title="&quot;A&quot; &amp; &apos;B&apos;">Fish &lt;&amp;&gt; Chips</Name>`, out)
}

func TestMarshal_ReplacesIllegalCharacters(t *testing.T) {
	root := NewElement("Vendor").SetAttr("Title", "Tab\tand\x0bVT")
	root.AppendText("Name", "Acme\x01Pub\uFFFE")
	root.AppendText("Note", "line one\nline two \U0001F4DA")

	out, err := MarshalString(root, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "<Name>Acme\uFFFDPub\uFFFD</Name>")
	assert.Contains(t, out, "Title=\"Tab\tand\uFFFDVT\"")

	var texts []string
	decoder := xml.NewDecoder(strings.NewReader(out))
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		if data, ok := token.(xml.CharData); ok && strings.TrimSpace(string(data)) != "" {
			texts = append(texts, string(data))
		}
	}
	assert.Equal(t, []string{"Acme\uFFFDPub\uFFFD", "line one\nline two \U0001F4DA"}, texts)
}

func TestMarshal_EmptyElementSelfCloses(t *testing.T) {
	out, err := MarshalString(NewElement("ID"), FragmentOptions())
	require.NoError(t, err)
	assert.Equal(t, "<ID/>", out)
}

func TestMarshal_InvalidTrees(t *testing.T) {
	t.Run("nil root", func(t *testing.T) {
		_, err := Marshal(nil, DefaultOptions())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidElement))
	})

	t.Run("unnamed child", func(t *testing.T) {
		root := NewElement("Report")
		root.Children = append(root.Children, &Element{})
		_, err := Marshal(root, DefaultOptions())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidElement))
	})
}

func TestElement_Helpers(t *testing.T) {
	root := NewElement("Customer").
		AppendTextIf("Name", "").
		AppendText("ID", "c1").
		Append(nil, NewTextElement("Contact", "a"), NewTextElement("Contact", "b"))

	assert.Nil(t, root.Child("Name"))
	require.NotNil(t, root.Child("ID"))
	assert.Equal(t, "c1", root.Child("ID").Value)
	assert.Len(t, root.ChildrenNamed("Contact"), 2)

	root.SetAttr("Created", "now")
	v, ok := root.Attr("Created")
	assert.True(t, ok)
	assert.Equal(t, "now", v)
	_, ok = root.Attr("Missing")
	assert.False(t, ok)
}
