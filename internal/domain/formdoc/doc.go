// Package formdoc loads declarative form documents.
//
// A document is YAML (or JSON, which parses as YAML) describing one form
// tree:
//
//	name: contact
//	title: Contact us
//	templates:
//	  short:
//	    props: {maxlength: 40}
//	form:
//	  chain: form:compound
//	  children:
//	    - name: email
//	      chain: "#labeled:email"
//	      props: {required: true}
//	    - name: send
//	      chain: submit
//	      props: {handler: deliver, next: /thanks}
//
// Build turns a document into a widget tree through a form.Factory. String
// "handler" and "next" properties are resolved against Bindings. The
// Library keeps built forms by name and the Seeder fills it from a
// directory of documents.
package formdoc
